package web

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"tailored-cv-web/internal/tailor"
	"tailored-cv-web/internal/wizard"
)

const pageStyle = `body{font-family:system-ui,sans-serif;background:#0b1f33;color:#f3f6fa;margin:0}
main{max-width:64rem;margin:0 auto;padding:2rem 1rem}
.card{background:rgba(255,255,255,.06);border:1px solid rgba(255,255,255,.1);border-radius:1rem;padding:2rem;margin:1rem auto;max-width:40rem}
.btn{display:inline-block;border:0;border-radius:.5rem;padding:.75rem 1.25rem;background:#0a66c2;color:#fff;cursor:pointer;text-decoration:none}
.btn.secondary{background:rgba(255,255,255,.12)}
.btn[disabled]{opacity:.5;cursor:not-allowed}
.notice{background:#5c1d1d;border:1px solid #b33;border-radius:.5rem;padding:1rem;margin:1rem auto;max-width:40rem}
.steps{display:flex;justify-content:center;gap:1rem;list-style:none;padding:0}
.steps li{width:3rem;height:3rem;border-radius:50%;display:flex;align-items:center;justify-content:center;background:rgba(255,255,255,.1)}
.steps li.done{background:#0a66c2}
.score{font-size:4rem;font-weight:700;color:#70b5f9}
textarea{width:100%;min-height:20rem;box-sizing:border-box}
input[type=email],input[type=password]{width:100%;box-sizing:border-box;padding:.75rem}`

// htmlWriter keeps the first write error so components can be written top to bottom.
type htmlWriter struct {
	ctx context.Context
	w   io.Writer
	err error
}

func newHTMLWriter(ctx context.Context, w io.Writer) *htmlWriter {
	return &htmlWriter{ctx: ctx, w: w}
}

// raw writes trusted markup.
func (hw *htmlWriter) raw(s string) {
	if hw.err != nil {
		return
	}
	_, hw.err = io.WriteString(hw.w, s)
}

// text writes escaped content. Also safe inside quoted attribute values.
func (hw *htmlWriter) text(s string) {
	hw.raw(templ.EscapeString(s))
}

func (hw *htmlWriter) url(u templ.SafeURL) {
	hw.raw(templ.EscapeString(string(u)))
}

func (hw *htmlWriter) component(c templ.Component) {
	if hw.err != nil {
		return
	}
	hw.err = c.Render(hw.ctx, hw.w)
}

// withLayout renders body inside the page shell.
func withLayout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return layout(title).Render(templ.WithChildren(ctx, body), w)
	})
}

func layout(title string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		children := templ.GetChildren(ctx)
		ctx = templ.ClearChildren(ctx)
		hw := newHTMLWriter(ctx, w)
		hw.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		hw.raw(`<meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
		hw.text(title)
		hw.raw(` · Li-Taylored CV</title><style>`)
		hw.raw(pageStyle)
		hw.raw(`</style></head><body><main>`)
		hw.component(children)
		hw.raw(`</main></body></html>`)
		return hw.err
	})
}

func noticeBox(message string) templ.Component {
	if message == "" {
		return templ.NopComponent
	}
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := newHTMLWriter(ctx, w)
		hw.raw(`<div class="notice" role="alert">`)
		hw.text(message)
		hw.raw(`</div>`)
		return hw.err
	})
}

func entryContent(v entryView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := newHTMLWriter(ctx, w)
		hw.raw(`<section><h1>Li-Taylored CV</h1><h2>Your LinkedIn Profile, Perfectly Tailored for Every Job</h2>`)
		hw.raw(`<p>Upload your LinkedIn PDF, paste a job description, and get an ATS-friendly CV and cover letter without inventing skills.</p></section>`)
		hw.component(noticeBox(v.Notice))
		hw.raw(`<section class="card">`)
		mode, button := "signin", "Sign In"
		if v.SignUp {
			mode, button = "signup", "Sign Up"
			hw.raw(`<h3>Create Account</h3><p>Start tailoring your applications</p>`)
		} else {
			hw.raw(`<h3>Welcome Back</h3><p>Continue your job search</p>`)
		}
		hw.raw(`<form method="post" action="/login" onsubmit="var b=this.querySelector('button');b.disabled=true;b.textContent='Processing...'">`)
		hw.raw(`<input type="hidden" name="mode" value="` + mode + `">`)
		hw.raw(`<label>Email <input type="email" name="email" value="`)
		hw.text(v.Email)
		hw.raw(`" placeholder="you@example.com" required></label>`)
		hw.raw(`<label>Password <input type="password" name="password" required></label>`)
		hw.raw(`<button class="btn" type="submit">` + button + `</button></form><p>`)
		if v.SignUp {
			hw.raw(`Already have an account? <a href="/">Sign in</a>`)
		} else {
			hw.raw(`Don't have an account? <a href="/?mode=signup">Sign up</a>`)
		}
		hw.raw(`</p></section>`)
		return hw.err
	})
}

func dashboardContent(v dashboardView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := newHTMLWriter(ctx, w)
		hw.raw(`<header><h1>Li-Taylored CV</h1><span>`)
		hw.text(v.Email)
		hw.raw(`</span><form method="post" action="/logout"><button class="btn secondary" type="submit">Logout</button></form></header>`)
		hw.component(stepIndicator(v.Steps))
		hw.component(noticeBox(v.Notice))
		switch v.State.Step {
		case wizard.StepCollectProfile:
			hw.component(profileStep(v.State))
		case wizard.StepCollectJobDescription:
			hw.component(jobDescriptionStep(v.State))
		case wizard.StepShowResults:
			hw.component(resultsStep(v.State))
		}
		return hw.err
	})
}

func stepIndicator(steps []stepView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := newHTMLWriter(ctx, w)
		hw.raw(`<ol class="steps">`)
		for _, s := range steps {
			hw.raw(`<li`)
			if s.Done {
				hw.raw(` class="done"`)
			}
			if s.Current {
				hw.raw(` aria-current="step"`)
			}
			hw.raw(`>` + strconv.Itoa(s.Number) + `</li>`)
		}
		hw.raw(`</ol>`)
		return hw.err
	})
}

func profileStep(st wizard.State) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := newHTMLWriter(ctx, w)
		hw.raw(`<section class="card" id="step-profile"><h2>Upload Your LinkedIn Profile</h2>`)
		hw.raw(`<p>Download your LinkedIn profile as PDF (Profile → More → Save to PDF)</p>`)
		hw.raw(`<form method="post" action="/dashboard/profile" enctype="multipart/form-data"><label>`)
		if p := st.Profile; p != nil {
			hw.raw(`<strong>`)
			hw.text(p.FileName)
			hw.raw(`</strong>`)
			if p.PageCount > 0 {
				hw.raw(`<span>` + strconv.Itoa(p.PageCount) + ` page(s)</span>`)
			}
			hw.raw(`<span>Click to change</span>`)
		} else {
			hw.raw(`<strong>Click to upload</strong><span>PDF files only</span>`)
		}
		hw.raw(`<input type="file" name="` + wizard.ProfileField + `" accept=".pdf" onchange="this.form.submit()"></label>`)
		hw.raw(`<noscript><button class="btn secondary" type="submit">Upload</button></noscript></form>`)
		hw.raw(`<form method="post" action="/dashboard/advance"><button class="btn" type="submit"`)
		if st.Profile == nil {
			hw.raw(` disabled`)
		}
		hw.raw(`>Continue to Job Description</button></form></section>`)
		return hw.err
	})
}

func jobDescriptionStep(st wizard.State) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := newHTMLWriter(ctx, w)
		hw.raw(`<section class="card" id="step-job"><h2>Paste the Job Description</h2>`)
		hw.raw(`<p>Copy and paste the complete job posting from any source</p>`)
		hw.raw(`<form method="post" action="/dashboard/tailor" onsubmit="var b=this.querySelector('#tailor');b.disabled=true;b.textContent='Processing...'">`)
		hw.raw(`<textarea name="job_description" placeholder="Paste the job description here including job title, required skills and responsibilities">`)
		hw.text(st.JobDescription)
		hw.raw(`</textarea>`)
		hw.raw(`<button class="btn secondary" type="submit" formaction="/dashboard/back" formnovalidate>Back</button>`)
		if st.Loading {
			hw.raw(`<button class="btn" id="tailor" type="submit" disabled>Processing...</button>`)
		} else {
			hw.raw(`<button class="btn" id="tailor" type="submit">Tailor My Application</button>`)
		}
		hw.raw(`</form></section>`)
		return hw.err
	})
}

func resultsStep(st wizard.State) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := newHTMLWriter(ctx, w)
		hw.raw(`<section class="card" id="step-results"><h2>Match Analysis</h2>`)
		if r := st.Results; r != nil {
			hw.raw(`<div class="score">` + strconv.Itoa(r.MatchScore) + `%</div><p>Match Score</p>`)
			if len(r.MissingSkills) > 0 {
				hw.raw(`<div class="missing"><p><strong>Missing Skills:</strong></p><p>`)
				hw.text(strings.Join(r.MissingSkills, ", "))
				hw.raw(`</p></div>`)
			}
		}
		hw.raw(`</section>`)
		hw.component(artifactCard(tailor.ArtifactCV, "Tailored CV", "ATS-friendly resume emphasizing relevant experience", "Download CV"))
		hw.component(artifactCard(tailor.ArtifactCoverLetter, "Cover Letter", "Personalized letter based on your LinkedIn profile", "Download Cover Letter"))
		hw.raw(`<form method="post" action="/dashboard/restart"><button class="btn secondary" type="submit">Tailor Another Application</button></form>`)
		return hw.err
	})
}

// artifactCard links to the download route. The link has no download
// attribute so a failed download renders the notice instead of saving it.
func artifactCard(kind tailor.ArtifactKind, title, blurb, label string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := newHTMLWriter(ctx, w)
		hw.raw(`<section class="card"><h3>`)
		hw.text(title)
		hw.raw(`</h3><p>`)
		hw.text(blurb)
		hw.raw(`</p><a class="btn" href="`)
		hw.url(templ.URL(dashboardPath + "/download/" + string(kind)))
		hw.raw(`">`)
		hw.text(label)
		hw.raw(`</a></section>`)
		return hw.err
	})
}
