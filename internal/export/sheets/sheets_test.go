package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/core"
)

// fakeSheet serves the subset of the Sheets values API the client uses.
type fakeSheet struct {
	mu       sync.Mutex
	rows     [][]any
	appended [][]any
	cleared  []string
}

func (f *fakeSheet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && strings.Contains(path, "/values/"):
		json.NewEncoder(w).Encode(map[string]any{"values": f.rows})
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":append"):
		body, _ := io.ReadAll(r.Body)
		var vr struct {
			Values [][]any `json:"values"`
		}
		json.Unmarshal(body, &vr)
		f.rows = append(f.rows, vr.Values...)
		f.appended = append(f.appended, vr.Values...)
		json.NewEncoder(w).Encode(map[string]any{"updates": map[string]any{"updatedRange": "Transactions!A2:E2"}})
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":clear"):
		rng := path[strings.Index(path, "/values/")+len("/values/"):]
		f.cleared = append(f.cleared, strings.TrimSuffix(rng, ":clear"))
		json.NewEncoder(w).Encode(map[string]any{"clearedRange": rng})
	default:
		http.Error(w, "unexpected "+r.Method+" "+path, http.StatusNotFound)
	}
}

func newTestClient(t *testing.T, f *fakeSheet) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return New(svc, "sheet-id", "Transactions")
}

func sample(id int64) core.Transaction {
	return core.Transaction{
		ID:       id,
		Kind:     core.Expense,
		Category: "Food",
		Amount:   core.MustAmount("12.50"),
		Date:     core.NewDate(2025, 4, 2),
	}
}

func TestAppendWritesHeaderOnEmptySheet(t *testing.T) {
	f := &fakeSheet{}
	c := newTestClient(t, f)

	ref, err := c.Append(context.Background(), sample(1))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if ref != "Transactions!A2:E2" {
		t.Fatalf("unexpected ref %q", ref)
	}
	if len(f.appended) != 2 {
		t.Fatalf("expected header and one row, got %v", f.appended)
	}
	if f.appended[0][0] != "ID" {
		t.Fatalf("expected header first, got %v", f.appended[0])
	}
	row := f.appended[1]
	if row[1] != "2025-04-02" || row[2] != "Expense" || row[3] != "Food" || row[4] != "12.5" {
		t.Fatalf("unexpected row %v", row)
	}
}

func TestAppendSkipsExistingID(t *testing.T) {
	f := &fakeSheet{rows: [][]any{{"ID"}, {"1"}, {"7"}}}
	c := newTestClient(t, f)

	ref, err := c.Append(context.Background(), sample(7))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if ref != "Transactions!A3:E3" {
		t.Fatalf("unexpected ref %q", ref)
	}
	if len(f.appended) != 0 {
		t.Fatalf("expected no write, got %v", f.appended)
	}
}

func TestConcurrentAppendsWriteOneRow(t *testing.T) {
	f := &fakeSheet{}
	c := newTestClient(t, f)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Append(context.Background(), sample(5)); err != nil {
				t.Errorf("append: %v", err)
			}
		}()
	}
	wg.Wait()

	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, row := range f.rows {
		if len(row) > 0 && fmt.Sprint(row[0]) == "5" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected one row for id 5, got %d in %v", count, f.rows)
	}
	if len(f.rows) != 2 {
		t.Fatalf("expected header and one row, got %v", f.rows)
	}
}

func TestDeleteRow(t *testing.T) {
	f := &fakeSheet{rows: [][]any{{"ID"}, {"1"}, {"7"}}}
	c := newTestClient(t, f)

	if err := c.DeleteRow(context.Background(), 7); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(f.cleared) != 1 || f.cleared[0] != "Transactions!A3:E3" {
		t.Fatalf("unexpected cleared ranges %v", f.cleared)
	}

	if err := c.DeleteRow(context.Background(), 99); err != nil {
		t.Fatalf("unknown id should be ignored: %v", err)
	}
	if len(f.cleared) != 1 {
		t.Fatalf("unknown id must not clear anything")
	}
}

func TestNilServiceFails(t *testing.T) {
	c := &Client{sheetName: "Transactions"}
	if _, err := c.Append(context.Background(), sample(1)); err == nil {
		t.Fatal("expected error without service")
	}
	if err := c.DeleteRow(context.Background(), 1); err == nil {
		t.Fatal("expected error without service")
	}
}

func TestNewFromEnvRequiresCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	if _, err := NewFromEnv(context.Background(), "", "x"); err == nil || err.Error() != "missing spreadsheet id" {
		t.Fatalf("expected missing id error, got %v", err)
	}
	_, err := NewFromEnv(context.Background(), "sid", "")
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("expected credentials error, got %v", err)
	}
}

func TestRowOf(t *testing.T) {
	ids := []string{"ID", "", "3", "12"}
	if rowOf(ids, 12) != 4 || rowOf(ids, 3) != 3 || rowOf(ids, 1) != 0 {
		t.Fatalf("unexpected rowOf results")
	}
}

func TestNewFromEnvRejectsNonServiceAccount(t *testing.T) {
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", `{"type":"authorized_user"}`)
	if _, err := NewFromEnv(context.Background(), "sid", "Transactions"); err == nil {
		t.Fatal("expected credential parse error")
	}
}
