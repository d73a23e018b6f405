package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	localstore "tailored-cv-web/internal/shared/storage/object/local"
	"tailored-cv-web/internal/tailor"
	"tailored-cv-web/internal/wizard"
)

const cliSessionID = "tailorctl"

func runAction(ctx context.Context, cmd *cli.Command) error {
	jobDescription, err := readJobDescription(cmd.String("job"), cmd.Root().Reader)
	if err != nil {
		return err
	}

	workDir, err := os.MkdirTemp("", "tailorctl-*")
	if err != nil {
		return fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	ctrl := wizard.NewController(cliSessionID, localstore.New(workDir), tailor.NewClient(cmd.String("backend")))
	out := cmd.Root().Writer

	st, err := selectProfile(ctx, ctrl, cmd.String("pdf"))
	if err != nil {
		return err
	}
	if st.Profile.PageCount > 0 {
		fmt.Fprintf(out, "Profile: %s (%d page(s))\n", st.Profile.FileName, st.Profile.PageCount)
	} else {
		fmt.Fprintf(out, "Profile: %s\n", st.Profile.FileName)
	}

	if _, err := ctrl.AdvanceFromProfile(); err != nil {
		return noticeError(err)
	}
	if _, err := ctrl.SetJobDescription(jobDescription); err != nil {
		return noticeError(err)
	}

	fmt.Fprintln(out, "Processing...")
	st, err = ctrl.SubmitTailorRequest(ctx)
	if err != nil {
		return noticeError(err)
	}
	printResults(out, st)

	if cmd.Bool("skip-download") {
		return nil
	}
	for _, kind := range []tailor.ArtifactKind{tailor.ArtifactCV, tailor.ArtifactCoverLetter} {
		path, err := saveArtifact(ctx, ctrl, kind, cmd.String("out"))
		if err != nil {
			// Each document is independent; report and keep going.
			fmt.Fprintf(cmd.Root().ErrWriter, "%s: %v\n", kind, err)
			continue
		}
		fmt.Fprintf(out, "Saved %s\n", path)
	}
	return nil
}

func downloadAction(ctx context.Context, cmd *cli.Command) error {
	kind, err := tailor.ParseArtifactKind(cmd.String("kind"))
	if err != nil {
		return err
	}
	workDir, err := os.MkdirTemp("", "tailorctl-*")
	if err != nil {
		return fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	ctrl := wizard.NewController(cliSessionID, localstore.New(workDir), tailor.NewClient(cmd.String("backend")))
	path, err := saveArtifact(ctx, ctrl, kind, cmd.String("out"))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.Root().Writer, "Saved %s\n", path)
	return nil
}

func readJobDescription(path string, stdin io.Reader) (string, error) {
	var (
		raw []byte
		err error
	)
	if path == "" || path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read job description: %w", err)
	}
	return string(raw), nil
}

func selectProfile(ctx context.Context, ctrl *wizard.Controller, path string) (wizard.State, error) {
	f, err := os.Open(path)
	if err != nil {
		return wizard.State{}, fmt.Errorf("open profile: %w", err)
	}
	defer f.Close()
	st, err := ctrl.SelectProfileFile(ctx, filepath.Base(path), f)
	if err != nil {
		return st, noticeError(err)
	}
	return st, nil
}

func saveArtifact(ctx context.Context, ctrl *wizard.Controller, kind tailor.ArtifactKind, dir string) (string, error) {
	dl, err := ctrl.DownloadArtifact(ctx, kind)
	if err != nil {
		return "", noticeError(err)
	}
	defer dl.Body.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, dl.Filename)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := io.Copy(f, dl.Body); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}

func printResults(w io.Writer, st wizard.State) {
	if st.Results == nil {
		return
	}
	fmt.Fprintf(w, "Match Score: %d%%\n", st.Results.MatchScore)
	if len(st.Results.MissingSkills) > 0 {
		fmt.Fprintf(w, "Missing Skills: %s\n", strings.Join(st.Results.MissingSkills, ", "))
	}
}

// noticeError keeps the cause but leads with the message a visitor would see.
func noticeError(err error) error {
	var statusErr *tailor.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Errorf("%s (backend status %d)", wizard.Notice(err), statusErr.StatusCode)
	}
	return fmt.Errorf("%s: %w", wizard.Notice(err), err)
}
