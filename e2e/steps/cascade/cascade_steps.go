package cascade

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"

	"causelist/internal/causelist/backendtest"
	"causelist/internal/causelist/view"
)

// TestContext is what the cascade steps need from the scenario harness.
type TestContext interface {
	StartBackend() error
	NewSession() error
	Backend() *backendtest.Server
	GET(path string) error
	POST(path string, body any) error
	LastStatus() int
	DecodeLast(v any) error
}

// RegisterSteps registers the form and backend step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &cascadeSteps{tc: tc}

	ctx.Step(`^the backend serves the sample directory$`, steps.backendServesSample)
	ctx.Step(`^a fresh session$`, steps.freshSession)
	ctx.Step(`^the backend answers "([^"]*)" with status (\d+)$`, steps.backendAnswers)

	ctx.Step(`^I open the form$`, steps.openForm)
	ctx.Step(`^I select "([^"]*)" as "([^"]*)"$`, steps.selectValue)
	ctx.Step(`^I submit a "([^"]*)" cause list for "([^"]*)"$`, steps.submit)

	ctx.Step(`^the "([^"]*)" options should be "([^"]*)"$`, steps.optionsShouldBe)
	ctx.Step(`^the "([^"]*)" options should be empty$`, steps.optionsShouldBeEmpty)
	ctx.Step(`^the selected "([^"]*)" should be "([^"]*)"$`, steps.selectedShouldBe)
	ctx.Step(`^the response status should be (\d+)$`, steps.statusShouldBe)
	ctx.Step(`^the submission status should be "([^"]*)"$`, steps.submissionStatusShouldBe)
	ctx.Step(`^the error description should be "([^"]*)"$`, steps.errorDescriptionShouldBe)
	ctx.Step(`^the backend should have received (\d+) requests?$`, steps.backendRequestCount)
	ctx.Step(`^the backend should have received "([^"]*)"$`, steps.backendReceived)
	ctx.Step(`^the backend should not have received a submission$`, steps.noSubmission)
}

type cascadeSteps struct {
	tc TestContext
	// form is the last form state the server returned.
	form view.FormJSON
}

func (s *cascadeSteps) backendServesSample(context.Context) error {
	return s.tc.StartBackend()
}

func (s *cascadeSteps) freshSession(context.Context) error {
	s.form = view.FormJSON{}
	return s.tc.NewSession()
}

func (s *cascadeSteps) backendAnswers(_ context.Context, path string, status int) error {
	s.tc.Backend().Fail(path, status)
	return nil
}

func (s *cascadeSteps) openForm(context.Context) error {
	if err := s.tc.GET("/api/form"); err != nil {
		return err
	}
	return s.tc.DecodeLast(&s.form)
}

func (s *cascadeSteps) selectValue(_ context.Context, value, level string) error {
	if err := s.tc.POST("/api/select/"+level, map[string]string{"value": value}); err != nil {
		return err
	}
	if s.tc.LastStatus() != 200 {
		return fmt.Errorf("select %s: status %d", level, s.tc.LastStatus())
	}
	return s.tc.DecodeLast(&s.form)
}

func (s *cascadeSteps) submit(_ context.Context, kind, date string) error {
	return s.tc.POST("/api/submit/"+kind, map[string]string{"date": date})
}

func (s *cascadeSteps) labels(level string) ([]string, error) {
	opts, ok := s.form.Options[level]
	if !ok {
		return nil, fmt.Errorf("no %q select in the last form", level)
	}
	if len(opts) == 0 || opts[0].Value != "" {
		return nil, fmt.Errorf("%q select lost its placeholder", level)
	}
	out := make([]string, 0, len(opts)-1)
	for _, o := range opts[1:] {
		out = append(out, o.Label)
	}
	return out, nil
}

func (s *cascadeSteps) optionsShouldBe(_ context.Context, level, want string) error {
	got, err := s.labels(level)
	if err != nil {
		return err
	}
	if strings.Join(got, ", ") != want {
		return fmt.Errorf("%s options: got %q, want %q", level, strings.Join(got, ", "), want)
	}
	return nil
}

func (s *cascadeSteps) optionsShouldBeEmpty(_ context.Context, level string) error {
	got, err := s.labels(level)
	if err != nil {
		return err
	}
	if len(got) != 0 {
		return fmt.Errorf("%s options: got %q, want only the placeholder", level, got)
	}
	return nil
}

func (s *cascadeSteps) selectedShouldBe(_ context.Context, level, want string) error {
	var got string
	switch level {
	case "state":
		got = s.form.Selection.State
	case "district":
		got = s.form.Selection.District
	case "complex":
		got = s.form.Selection.Complex
	case "court":
		got = s.form.Selection.Court
	default:
		return fmt.Errorf("unknown level %q", level)
	}
	if got != want {
		return fmt.Errorf("selected %s: got %q, want %q", level, got, want)
	}
	return nil
}

func (s *cascadeSteps) statusShouldBe(_ context.Context, want int) error {
	if got := s.tc.LastStatus(); got != want {
		return fmt.Errorf("status: got %d, want %d", got, want)
	}
	return nil
}

func (s *cascadeSteps) submissionStatusShouldBe(_ context.Context, want string) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := s.tc.DecodeLast(&body); err != nil {
		return err
	}
	if body.Status != want {
		return fmt.Errorf("submission status: got %q, want %q", body.Status, want)
	}
	return nil
}

func (s *cascadeSteps) errorDescriptionShouldBe(_ context.Context, want string) error {
	var body map[string]string
	if err := s.tc.DecodeLast(&body); err != nil {
		return err
	}
	if body["error_description"] != want {
		return fmt.Errorf("error_description: got %q, want %q", body["error_description"], want)
	}
	return nil
}

func (s *cascadeSteps) backendRequestCount(_ context.Context, want int) error {
	if got := len(s.tc.Backend().Calls()); got != want {
		return fmt.Errorf("backend requests: got %d %v, want %d", got, s.tc.Backend().Calls(), want)
	}
	return nil
}

func (s *cascadeSteps) backendReceived(_ context.Context, path string) error {
	if s.tc.Backend().CallCount(path) == 0 {
		return fmt.Errorf("backend never received %q; calls: %v", path, s.tc.Backend().Calls())
	}
	return nil
}

func (s *cascadeSteps) noSubmission(context.Context) error {
	for _, c := range s.tc.Backend().Calls() {
		if strings.HasPrefix(c, "/submit-") {
			return fmt.Errorf("unexpected submission %q", c)
		}
	}
	return nil
}
