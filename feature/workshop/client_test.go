package workshop

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestClient_FetchDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "2", r.PostFormValue("itemcount"))
		assert.Equal(t, "111", r.PostFormValue("publishedfileids[0]"))
		assert.Equal(t, "222", r.PostFormValue("publishedfileids[1]"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"response": {
				"result": 1,
				"resultcount": 2,
				"publishedfiledetails": [
					{"publishedfileid": "111", "title": "Mod A", "tags": [{"tag": "Overhaul"}], "time_updated": 1700000000},
					{"publishedfileid": "222", "title": "Mod B", "time_updated": 1700000001}
				]
			}
		}`))
	}))
	defer srv.Close()

	client := NewClient(Config{ApiURL: srv.URL, TimeoutSeconds: 5}, zap.NewNop())

	details, err := client.FetchDetails(context.Background(), []string{"222", "111"})
	assert.NoError(t, err)
	assert.Len(t, details, 2)
	assert.Equal(t, "Mod A", details["111"].Title)
	assert.Equal(t, []string{"Overhaul"}, details["111"].TagNames())
	assert.Equal(t, int64(1700000001), details["222"].TimeUpdated)
}

func TestClient_FetchDetailsEmptyInput(t *testing.T) {
	client := NewClient(Config{ApiURL: "http://unused.invalid"}, zap.NewNop())

	details, err := client.FetchDetails(context.Background(), nil)
	assert.NoError(t, err)
	assert.Empty(t, details)
}

func TestClient_FetchDetailsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(Config{ApiURL: srv.URL, TimeoutSeconds: 5}, zap.NewNop())

	details, err := client.FetchDetails(context.Background(), []string{"111"})
	assert.Error(t, err)
	assert.Nil(t, details)
}

func TestClient_FetchDetailsMissingItemsStayAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response": {"result": 1, "resultcount": 0}}`))
	}))
	defer srv.Close()

	client := NewClient(Config{ApiURL: srv.URL, TimeoutSeconds: 5}, zap.NewNop())

	details, err := client.FetchDetails(context.Background(), []string{"999"})
	assert.NoError(t, err)
	assert.Empty(t, details)
}
