package selector_test

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"causelist/internal/causelist/backend"
	"causelist/internal/causelist/backendtest"
	"causelist/internal/causelist/models"
	"causelist/internal/causelist/selector"
	"causelist/pkg/testutil"
)

type recordingAlerter struct {
	mu       sync.Mutex
	messages []string
}

func (a *recordingAlerter) Alert(_ context.Context, message string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.messages = append(a.messages, message)
}

func (a *recordingAlerter) Messages() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.messages...)
}

func newCascade(t *testing.T) (*selector.Selector, *backendtest.Server, *recordingAlerter) {
	t.Helper()
	fake, srv := backendtest.Start(t, backendtest.DefaultDirectory())
	client, err := backend.NewHTTPClient(srv.URL)
	require.NoError(t, err)
	alerts := &recordingAlerter{}
	sel, err := selector.New(client, client, alerts)
	require.NoError(t, err)
	return sel, fake, alerts
}

func TestCascadeAgainstBackend(t *testing.T) {
	ctx := context.Background()

	testutil.Given(t, "a form wired to the backend", func(t *testing.T) {
		sel, fake, alerts := newCascade(t)
		require.NoError(t, sel.LoadStates(ctx))

		testutil.When(t, "the user picks Delhi", func(t *testing.T) {
			fake.Reset()
			require.NoError(t, sel.SelectState(ctx, "Delhi"))

			testutil.Then(t, "exactly one district request is made and rendered after the placeholder", func(t *testing.T) {
				assert.Equal(t, []string{"/get-districts/Delhi"}, fake.Calls())
				var labels []string
				for _, o := range sel.Snapshot().List(models.LevelDistrict).Options() {
					labels = append(labels, o.Label)
				}
				assert.Equal(t, []string{"--Select District--", "North", "South"}, labels)
			})
		})

		testutil.When(t, "the form is completed and criminal is submitted", func(t *testing.T) {
			require.NoError(t, sel.SelectDistrict(ctx, "North"))
			require.NoError(t, sel.SelectComplex(ctx, "ComplexA"))
			require.NoError(t, sel.SelectCourt(ctx, "Court1"))
			sel.SetDate("2024-01-15")
			fake.Reset()
			fake.SetStatus("Cause list ready")

			res, err := sel.Submit(ctx, models.KindCriminal)
			require.NoError(t, err)

			testutil.Then(t, "the submission path carries DD-MM-YYYY and the status is alerted", func(t *testing.T) {
				assert.Equal(t, []string{"/submit-criminal/Delhi/North/ComplexA/Court1/15-01-2024"}, fake.Calls())
				assert.Equal(t, "Cause list ready", res.Status)
				assert.Equal(t, []string{"Cause list ready"}, alerts.Messages())
			})
		})
	})
}

func TestCascade_IncompleteSubmitMakesNoRequest(t *testing.T) {
	ctx := context.Background()
	sel, fake, alerts := newCascade(t)
	require.NoError(t, sel.SelectState(ctx, "Delhi"))
	fake.Reset()

	_, err := sel.Submit(ctx, models.KindCivil)
	assert.True(t, models.IsValidation(err))
	assert.Empty(t, fake.Calls())
	assert.Equal(t, []string{models.MissingFieldsMessage}, alerts.Messages())
}

func TestCascade_StaleDistrictsFromBackend(t *testing.T) {
	ctx := context.Background()
	sel, fake, _ := newCascade(t)

	inFlight := make(chan struct{})
	release := make(chan struct{})
	fake.OnRequest("/get-districts/Delhi", func(*http.Request) {
		close(inFlight)
		<-release
	})

	errCh := make(chan error, 1)
	go func() { errCh <- sel.SelectState(ctx, "Delhi") }()
	<-inFlight

	require.NoError(t, sel.SelectState(ctx, "Goa"))
	close(release)
	require.ErrorIs(t, <-errCh, selector.ErrStale)

	assert.Equal(t, []string{"North Goa"}, sel.Snapshot().List(models.LevelDistrict).Labels)
}

func TestCascade_BackendFailureRaisesNoAlert(t *testing.T) {
	ctx := context.Background()
	sel, fake, alerts := newCascade(t)
	fake.Fail("/get-states", http.StatusInternalServerError)

	err := sel.LoadStates(ctx)
	assert.Equal(t, backend.ErrorProviderOutage, backend.GetCategory(err))
	assert.Empty(t, sel.Snapshot().List(models.LevelState).Labels)
	assert.Empty(t, alerts.Messages())
}
