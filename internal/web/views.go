package web

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"

	"tailored-cv-web/internal/shared/server/respond"
	"tailored-cv-web/internal/wizard"
)

type entryView struct {
	Title  string
	SignUp bool
	Email  string
	Notice string
}

type stepView struct {
	Number  int
	Done    bool
	Current bool
}

type dashboardView struct {
	Title  string
	Email  string
	Notice string
	Steps  []stepView
	State  wizard.State
}

func newDashboardView(email string, st wizard.State, notice string) dashboardView {
	steps := make([]stepView, 0, 3)
	for _, s := range []wizard.Step{wizard.StepCollectProfile, wizard.StepCollectJobDescription, wizard.StepShowResults} {
		steps = append(steps, stepView{
			Number:  int(s),
			Done:    st.Step >= s,
			Current: st.Step == s,
		})
	}
	return dashboardView{
		Title:  "Dashboard",
		Email:  email,
		Notice: notice,
		Steps:  steps,
		State:  st,
	}
}

func entryPage(v entryView) templ.Component {
	return withLayout(v.Title, entryContent(v))
}

func dashboardPage(v dashboardView) templ.Component {
	return withLayout(v.Title, dashboardContent(v))
}

// render serves component through templ's buffered handler, so a failed render
// never leaves a half-written page.
func render(c *gin.Context, status int, component templ.Component) {
	templ.Handler(component,
		templ.WithStatus(status),
		templ.WithErrorHandler(func(r *http.Request, err error) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				respond.LogNotice(c, http.StatusInternalServerError, "render_failed", err.Error())
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte("failed to render page"))
			})
		}),
	).ServeHTTP(c.Writer, c.Request)
}
