package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"causelist/internal/causelist/backendtest"
	"causelist/internal/causelist/models"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), append([]string{"-config", t.TempDir()}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_SubmitsAndAlertsStatus(t *testing.T) {
	fake, srv := backendtest.Start(t, backendtest.DefaultDirectory())

	code, stdout, stderr := runCLI(t,
		"-backend", srv.URL,
		"-state", "Delhi", "-district", "North", "-complex", "ComplexA", "-court", "Court1",
		"-kind", "civil", "-date", "2024-03-07",
	)

	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "civil cause list for Court1 on 07-03-2024 fetched\n", stdout)
	assert.Equal(t, 1, fake.CallCount("/submit-civil/Delhi/North/ComplexA/Court1/07-03-2024"))
}

func TestRun_ListPrintsFirstUnsetLevel(t *testing.T) {
	_, srv := backendtest.Start(t, backendtest.DefaultDirectory())

	code, stdout, _ := runCLI(t, "-backend", srv.URL, "-state", "Delhi", "-list")

	assert.Equal(t, 0, code)
	assert.Equal(t, "North\nSouth\n", stdout)
}

func TestRun_UnknownValueListsChoices(t *testing.T) {
	fake, srv := backendtest.Start(t, backendtest.DefaultDirectory())

	code, _, stderr := runCLI(t, "-backend", srv.URL, "-state", "Kerala")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, `state "Kerala" not found; available: Delhi, Goa`)
	assert.Equal(t, []string{"/get-states"}, fake.Calls())
}

func TestRun_IncompleteFormAlertsWithoutSubmitting(t *testing.T) {
	fake, srv := backendtest.Start(t, backendtest.DefaultDirectory())

	code, stdout, _ := runCLI(t, "-backend", srv.URL, "-state", "Delhi", "-district", "North")

	assert.Equal(t, 1, code)
	assert.Equal(t, models.MissingFieldsMessage+"\n", stdout)
	for _, c := range fake.Calls() {
		assert.NotContains(t, c, "/submit-")
	}
}

func TestRun_WritesExport(t *testing.T) {
	fake, srv := backendtest.Start(t, backendtest.DefaultDirectory())
	fake.SetEntries([]models.CaseEntry{{SrNo: "1", CaseNumber: "CC/12/2024", PartyName: "State vs X", Advocate: "A. Rao"}})
	out := filepath.Join(t.TempDir(), "list.json")

	code, stdout, stderr := runCLI(t,
		"-backend", srv.URL,
		"-state", "Goa", "-district", "North Goa", "-complex", "Panaji", "-court", "Court 1 (JMFC)",
		"-date", "2024-01-15", "-out", out,
	)

	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "wrote 1 rows to "+out)
	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	var got []models.CaseEntry
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "CC/12/2024", got[0].CaseNumber)
}

func TestRun_BadFlags(t *testing.T) {
	code, _, _ := runCLI(t, "-kind")
	assert.Equal(t, 2, code)

	code, _, stderr := runCLI(t, "stray")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "unexpected arguments: stray")
}

func TestRun_BackendDownFails(t *testing.T) {
	fake, srv := backendtest.Start(t, backendtest.DefaultDirectory())
	fake.Fail("/get-states", 503)

	code, _, stderr := runCLI(t, "-backend", srv.URL, "-list")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "load states")
}

func TestRun_UnknownKindIsUsageError(t *testing.T) {
	fake, srv := backendtest.Start(t, backendtest.DefaultDirectory())

	code, _, _ := runCLI(t, "-backend", srv.URL, "-kind", "appellate")

	assert.Equal(t, 2, code)
	assert.Empty(t, fake.Calls())
}
