package score_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	Ss "github.com/W-Mai/simple-compose/score"
)

func makeMockScoreServ(status int, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func TestSingleFetch(t *testing.T) {
	mockWWW := makeMockScoreServ(http.StatusOK, "craquemattic")
	urlWWW := mockWWW.URL

	t.Run("Fetches a single URL", func(t *testing.T) {
		status, got, err := Ss.SingleFetch(urlWWW)
		assertError(t, err, nil)
		assertInt(t, status, http.StatusOK)
		assertString(t, string(got), "craquemattic")
	})

	// Close this mock server to run additional tests
	mockWWW.Close()

	t.Run("Returns Error after Server Close", func(t *testing.T) {
		_, _, err := Ss.SingleFetch(urlWWW)
		assertGotError(t, err)
	})
}

func TestLoadScoreURL(t *testing.T) {
	t.Run("Decodes a served score", func(t *testing.T) {
		server := makeMockScoreServ(http.StatusOK, twoTrackScore)
		defer server.Close()

		sf, err := Ss.LoadScoreURLWithClient(server.URL, server.Client())
		assertError(t, err, nil)
		assertInt(t, sf.Tracks, 2)
	})

	t.Run("Fails on a non-200 status", func(t *testing.T) {
		server := makeMockScoreServ(http.StatusNotFound, "nope")
		defer server.Close()

		_, err := Ss.LoadScoreURLWithClient(server.URL, server.Client())
		assertGotError(t, err)
		assertStringContains(t, err.Error(), "404")
	})

	t.Run("Fails on an empty body", func(t *testing.T) {
		server := makeMockScoreServ(http.StatusOK, "")
		defer server.Close()

		_, err := Ss.LoadScoreURLWithClient(server.URL, server.Client())
		assertGotError(t, err)
	})

	t.Run("Load picks the fetcher for URLs", func(t *testing.T) {
		server := makeMockScoreServ(http.StatusOK, twoTrackScore)
		defer server.Close()

		s, err := Ss.Load(server.URL)
		assertError(t, err, nil)
		assertInt(t, s.TrackCount(), 2)
	})

	t.Run("Tells URLs from paths", func(t *testing.T) {
		if !Ss.IsURL("https://example.com/s.json") || Ss.IsURL("./s.json") {
			t.Error("IsURL misclassified a location")
		}
	})
}
