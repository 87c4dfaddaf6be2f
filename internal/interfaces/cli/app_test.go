package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/garyjia/hr-portal/internal/infrastructure/export"
)

const requisitions = `[
  {"id": "PR-1", "status": "Approved", "line_manager_approval": "Approved", "finance_approval": "Approved"},
  {"id": "PR-2", "status": "Rejected", "line_manager_approval": "Rejected", "line_manager_rejected_reason": "No budget"},
  {"id": "PR-3", "status": "Pending", "line_manager_approval": "Approved", "finance_approval": "Pending"}
]`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := New().WithOutput(&stdout, &stderr).WithInput(strings.NewReader(stdin))
	err := app.ExecuteWithArgs(context.Background(), args)
	return stdout.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestApp_Version(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "portalctl version")
}

func TestApp_Help(t *testing.T) {
	out, err := run(t, "", "--help")
	require.NoError(t, err)
	for _, cmd := range []string{"resolve", "schemas", "import", "export", "confirm"} {
		assert.Contains(t, out, cmd)
	}
}

func TestApp_Schemas(t *testing.T) {
	out, err := run(t, "", "schemas", "-t", "exit-clearance")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "exit-clearance\n"))
	assert.Contains(t, out, "  4. ")

	out, err = run(t, "", "schemas", "--json")
	require.NoError(t, err)
	var all map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &all))
	assert.Len(t, all, 16)

	_, err = run(t, "", "schemas", "-t", "nope")
	assert.Error(t, err)
}

func TestApp_SchemasWithRegistryFile(t *testing.T) {
	registry := writeFile(t, "registry.yaml", `
form_types:
  asset-return:
    - field: it_approval
      label: IT
      encoding: string_enum
`)
	out, err := run(t, "", "schemas", "-t", "asset-return", "--registry", registry)
	require.NoError(t, err)
	assert.Contains(t, out, "1. IT (it_approval, string_enum)")
}

func TestApp_ResolveTable(t *testing.T) {
	file := writeFile(t, "subs.json", requisitions)

	out, err := run(t, "", "resolve", "-t", "purchase-requisition", "-f", file)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "NEXT STAGE")
	assert.Contains(t, lines[1], "PR-1")
	assert.Contains(t, lines[1], "Completed")
	assert.Contains(t, lines[2], "Rejected (No budget)")
	assert.Contains(t, lines[3], "InProgress")
}

func TestApp_ResolveJSONFromStdinWithFilter(t *testing.T) {
	out, err := run(t, requisitions, "resolve", "-t", "purchase-requisition", "-f", "-", "--category", "close", "--json")
	require.NoError(t, err)

	var rows []resolvedRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "PR-2", rows[0].Pipeline.SubmissionID)
	assert.Equal(t, "No budget", rows[0].Pipeline.RejectionReason)
}

func TestApp_ResolveErrors(t *testing.T) {
	file := writeFile(t, "subs.json", requisitions)

	_, err := run(t, "", "resolve", "-t", "purchase-requisition", "-f", file, "--category", "bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown category")

	_, err = run(t, `{"id": 1}`, "resolve", "-t", "purchase-requisition", "-f", "-")
	assert.Error(t, err)

	_, err = run(t, "", "resolve", "-t", "purchase-requisition")
	assert.Error(t, err)
}

func TestApp_ResolveUnknownRangeMatchesAll(t *testing.T) {
	out, err := run(t, requisitions, "resolve", "-t", "purchase-requisition", "-f", "-", "--range", "fortnight", "--json")
	require.NoError(t, err)

	var rows []resolvedRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	assert.Len(t, rows, 3)
}

// portalConfig writes a config for a fresh database and a fake forms API
func portalConfig(t *testing.T) string {
	t.Helper()
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodGet {
			fmt.Fprint(w, `{"data": [{"id": "INC-1", "status": "Resolved", "employee_id": "E1"}]}`)
			return
		}
		fmt.Fprint(w, `{"success": true}`)
	}))
	t.Cleanup(api.Close)

	dir := t.TempDir()
	return writeFile(t, "config.yaml", fmt.Sprintf(`
database:
  path: %s
logger:
  level: error
  format: console
forms_api:
  base_url: %s
  fetch_attempts: 1
`, filepath.Join(dir, "portal.db"), api.URL))
}

func TestApp_ImportExportConfirm(t *testing.T) {
	cfg := portalConfig(t)
	file := writeFile(t, "subs.json", requisitions)

	out, err := run(t, "", "import", "-c", cfg, "-t", "purchase-requisition", "-f", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 3 of 3 purchase-requisition submissions")

	out, err = run(t, "", "import", "-c", cfg, "-t", "it-incident", "--from-api")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 of 1 it-incident submissions")

	xlsx := filepath.Join(t.TempDir(), "requisitions.xlsx")
	out, err = run(t, "", "export", "-c", cfg, "-t", "purchase-requisition", "-o", xlsx)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 3 purchase-requisition submissions")

	f, err := excelize.OpenFile(xlsx)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.SheetPipelines)
	require.NoError(t, err)
	assert.Len(t, rows, 4)

	out, err = run(t, "", "confirm", "INC-1", "-c", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "INC-1 Confirmed")

	_, err = run(t, "", "confirm", "INC-1", "-c", cfg, "--reject")
	assert.Error(t, err)
}

func TestApp_ImportFlagRules(t *testing.T) {
	cfg := portalConfig(t)

	_, err := run(t, "", "import", "-c", cfg, "-t", "it-incident")
	assert.Error(t, err)

	_, err = run(t, "", "import", "-c", cfg, "-t", "it-incident", "-f", "x.json", "--from-api")
	assert.Error(t, err)
}
