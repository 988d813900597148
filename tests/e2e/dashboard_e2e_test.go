//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/godilite/sla-dashboard/internal/app"
	"github.com/godilite/sla-dashboard/internal/config"
	"github.com/godilite/sla-dashboard/tests/e2e/fixtures"
)

var testBaseDate = time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)

type dashboard struct {
	base   string
	client *http.Client
}

func startDashboard(t *testing.T) *dashboard {
	t.Helper()

	cfg := &config.Config{
		AppEnv:       "test",
		HTTPPort:     0,
		DBDriver:     "sqlite3",
		DBPath:       fmt.Sprintf("file:e2e_%d?mode=memory&cache=shared&_foreign_keys=on", time.Now().UnixNano()),
		MaxUploadMB:  5,
		MaxTableRows: 100,
	}

	ctx := context.Background()
	a, err := app.NewApp(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	a.Start()

	t.Cleanup(func() {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		_ = a.Shutdown(shutdownCtx)
	})

	d := &dashboard{
		base: fmt.Sprintf("http://127.0.0.1:%d", a.Addr().(*net.TCPAddr).Port),
		client: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}

	require.Eventually(t, func() bool {
		resp, err := d.client.Get(d.base + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	return d
}

func (d *dashboard) upload(t *testing.T, filename string, data []byte) (int, string) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	resp, err := d.client.Post(d.base+"/upload", w.FormDataContentType(), &body)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func (d *dashboard) get(t *testing.T, path string) (int, string) {
	t.Helper()

	resp, err := d.client.Get(d.base + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func (d *dashboard) report(t *testing.T, signals map[string]string) (int, string) {
	t.Helper()

	raw, err := json.Marshal(signals)
	require.NoError(t, err)
	return d.get(t, "/report?datastar="+url.QueryEscape(string(raw)))
}

func sampleExams() []fixtures.Exam {
	return []fixtures.Exam{
		fixtures.CT(1, "Hospital A", testBaseDate.Add(8*time.Hour), 30*time.Minute),
		fixtures.CT(2, "Hospital A", testBaseDate.Add(9*time.Hour), 90*time.Minute),
		fixtures.CT(3, "Hospital A", testBaseDate.Add(13*time.Hour), 4*time.Hour),
		fixtures.CT(4, "Hospital A", testBaseDate.Add(24*time.Hour+20*time.Hour), 2*time.Hour),
		fixtures.CT(5, "Hospital B", testBaseDate.Add(10*time.Hour), 20*time.Minute),
		{ID: 6, Modality: "MR", CareType: "Pronto Atendimento", Facility: "Hospital C", Prescribed: testBaseDate.Add(8 * time.Hour), Turnaround: time.Hour},
	}
}

func TestE2E_UploadAndReport(t *testing.T) {
	d := startDashboard(t)

	status, body := d.get(t, "/")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Please upload an Excel file to continue.")

	data, err := fixtures.Workbook(fixtures.Columns, sampleExams()...)
	require.NoError(t, err)

	status, _ = d.upload(t, "exams.xlsx", data)
	require.Equal(t, http.StatusSeeOther, status)

	status, body = d.get(t, "/")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "exams.xlsx (6 rows)")
	assert.Contains(t, body, `<option value="Hospital A" selected>`)
	assert.Contains(t, body, `<option value="Hospital B">`)
	assert.NotContains(t, body, "Hospital C")

	t.Run("single day", func(t *testing.T) {
		status, body := d.report(t, map[string]string{
			"facility": "Hospital A",
			"mode":     "single",
			"date":     "2024-01-02",
		})
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, "datastar-patch-elements")
		assert.Contains(t, body, "<strong>Total Patients Processed</strong>: 3")
		assert.Contains(t, body, "<strong>Average Process Time (in hours)</strong>: 2.00")
		assert.Contains(t, body, `src="data:image/png;base64,`)
	})

	t.Run("date range", func(t *testing.T) {
		status, body := d.report(t, map[string]string{
			"facility": "Hospital A",
			"mode":     "range",
			"start":    "2024-01-01",
			"end":      "2024-01-03",
		})
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, "<strong>Total Patients Processed</strong>: 4")
	})

	t.Run("no matching exams", func(t *testing.T) {
		status, body := d.report(t, map[string]string{
			"facility": "Hospital B",
			"mode":     "single",
			"date":     "2024-02-01",
		})
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, "No data available for the selected UNIDADE and date range.")
	})

	t.Run("inverted range", func(t *testing.T) {
		status, body := d.report(t, map[string]string{
			"facility": "Hospital A",
			"mode":     "range",
			"start":    "2024-01-03",
			"end":      "2024-01-01",
		})
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, "The end date must not be before the start date.")
	})
}

func TestE2E_UploadReplacesPrevious(t *testing.T) {
	d := startDashboard(t)

	first, err := fixtures.Workbook(fixtures.Columns, sampleExams()...)
	require.NoError(t, err)
	status, _ := d.upload(t, "first.xlsx", first)
	require.Equal(t, http.StatusSeeOther, status)

	second, err := fixtures.Workbook(fixtures.Columns,
		fixtures.CT(1, "Hospital Z", testBaseDate.Add(8*time.Hour), time.Hour),
	)
	require.NoError(t, err)
	status, _ = d.upload(t, "second.xlsx", second)
	require.Equal(t, http.StatusSeeOther, status)

	_, body := d.get(t, "/")
	assert.Contains(t, body, "second.xlsx (1 rows)")
	assert.Contains(t, body, "Hospital Z")
	assert.NotContains(t, body, "Hospital A")

	_, body = d.report(t, map[string]string{
		"facility": "Hospital A",
		"mode":     "single",
		"date":     "2024-01-02",
	})
	assert.Contains(t, body, "No data available for the selected UNIDADE and date range.")
}

func TestE2E_RejectedUploads(t *testing.T) {
	d := startDashboard(t)

	t.Run("missing column", func(t *testing.T) {
		data, err := fixtures.Workbook(fixtures.Columns[:5], sampleExams()...)
		require.NoError(t, err)

		status, body := d.upload(t, "partial.xlsx", data)
		assert.Equal(t, http.StatusUnprocessableEntity, status)
		assert.Contains(t, body, "STATUS_ALAUDAR")
	})

	t.Run("not a workbook", func(t *testing.T) {
		status, body := d.upload(t, "exams.xlsx", []byte("MODALIDADE;UNIDADE\nCT;A\n"))
		assert.Equal(t, http.StatusUnprocessableEntity, status)
		assert.Contains(t, body, "could not be read as an Excel workbook")
	})

	t.Run("wrong extension", func(t *testing.T) {
		status, _ := d.upload(t, "exams.csv", []byte("a,b"))
		assert.Equal(t, http.StatusUnprocessableEntity, status)
	})

	_, body := d.get(t, "/")
	assert.Contains(t, body, "Please upload an Excel file to continue.")
}
