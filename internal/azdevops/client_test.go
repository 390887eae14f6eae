package azdevops

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/merkle-dx/adopr/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() *RetryConfig {
	return &RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(Options{
		OrgURL:     server.URL,
		Project:    "DigitalExperience",
		Repository: "aemaacs-life",
		Token:      "secret",
	}, WithRetryConfig(fastRetry()))
	return client, server
}

func TestAuthorizationHeader(t *testing.T) {
	var got string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{"count":0,"value":[]}`))
	}))

	client.ListBranches(context.Background(), "repo-id", "")

	want := "Basic " + base64.StdEncoding.EncodeToString([]byte(":secret"))
	assert.Equal(t, want, got)
}

func TestAuthErrorIsFatal(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"TF400813: The user is not authorized."}`))
	}))

	_, err := client.ResolveRepositoryID(context.Background())
	require.Error(t, err)
	assert.True(t, IsAuthError(err))
	assert.Contains(t, err.Error(), "AZURE_DEVOPS_PAT")
	// Auth failures are terminal, not transient
	assert.Equal(t, 1, attempts)
}

func TestReadRetriesOnServerError(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"count":1,"value":[{"id":"abc-123","name":"aemaacs-life"}]}`))
	}))

	id, err := client.ResolveRepositoryID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc-123", id)
	assert.Equal(t, 3, attempts)
}

func TestReadRetriesExhausted(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	_, err := client.ResolveRepositoryID(context.Background())
	require.Error(t, err)

	var transient *TransientServiceError
	require.True(t, errors.As(err, &transient))
	assert.Equal(t, 3, transient.Attempts)
	assert.Equal(t, 3, attempts)
}

// A transport-level failure on the last attempt of a read gets the same
// wrap as an exhausted 5xx: TransientServiceError, not a bare error.
func TestReadNetworkErrorWrappedAsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(Options{
		OrgURL:     url,
		Project:    "DigitalExperience",
		Repository: "aemaacs-life",
		Token:      "secret",
	}, WithRetryConfig(fastRetry()))

	_, err := client.ResolveRepositoryID(context.Background())
	require.Error(t, err)

	var transient *TransientServiceError
	require.True(t, errors.As(err, &transient))
	assert.Equal(t, 3, transient.Attempts)
}

func TestCreateNetworkErrorNotTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(Options{
		OrgURL:     url,
		Project:    "DigitalExperience",
		Repository: "aemaacs-life",
		Token:      "secret",
	}, WithRetryConfig(fastRetry()))

	_, err := client.CreatePullRequest(context.Background(), "repo-id", draftFor("feature/ADW-1-x", "dev"))
	require.Error(t, err)

	// One attempt, terminal failure: never reported as retry exhaustion
	var failed *SubmissionFailed
	assert.True(t, errors.As(err, &failed))
	var transient *TransientServiceError
	assert.False(t, errors.As(err, &transient))
}

func TestResolveRepositoryIDNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"count":1,"value":[{"id":"other","name":"some-other-repo"}]}`))
	}))

	_, err := client.ResolveRepositoryID(context.Background())
	assert.True(t, IsNotFoundError(err))
}

func TestListBranchesStripsRefPrefix(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "heads/feature/", r.URL.Query().Get("filter"))
		w.Write([]byte(`{"count":2,"value":[{"name":"refs/heads/feature/ADW-1-x"},{"name":"refs/heads/feature/ADW-2-y"}]}`))
	}))

	branches, err := client.ListBranches(context.Background(), "repo-id", "feature/")
	require.NoError(t, err)
	assert.Equal(t, []string{"feature/ADW-1-x", "feature/ADW-2-y"}, branches)
}

func TestSearchWorkItems(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/DigitalExperience/_apis/wit/wiql", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte(`{"workItems":[{"id":101},{"id":102}]}`))
	})
	mux.HandleFunc("/DigitalExperience/_apis/wit/workitems", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "101,102", r.URL.Query().Get("ids"))
		w.Write([]byte(`{"count":2,"value":[
			{"id":101,"fields":{"System.Title":"ADW-1495 Toc dynamic variation","System.WorkItemType":"User Story"}},
			{"id":102,"fields":{"System.Title":"Untagged spike","System.WorkItemType":"Task"}}
		]}`))
	})

	client, _ := newTestClient(t, mux)

	fromTitle := func(title string) (models.TicketID, bool) {
		if title == "ADW-1495 Toc dynamic variation" {
			return "ADW-1495", true
		}
		return "", false
	}

	candidates, err := client.SearchWorkItems(context.Background(), "toc", 10, fromTitle)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, models.TicketID("ADW-1495"), candidates[0].ID)
	assert.Equal(t, "User Story", candidates[0].Kind)
	// No ticket in the title: numeric work-item id keeps it selectable
	assert.Equal(t, models.TicketID("WI-102"), candidates[1].ID)
}

func TestFindActivePullRequestNone(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "active", r.URL.Query().Get("searchCriteria.status"))
		assert.Equal(t, "refs/heads/feature/ADW-1-x", r.URL.Query().Get("searchCriteria.sourceRefName"))
		w.Write([]byte(`{"count":0,"value":[]}`))
	}))

	result, err := client.FindActivePullRequest(context.Background(), "repo-id", "feature/ADW-1-x", "dev")
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestFindActivePullRequestHit(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"count":1,"value":[{"pullRequestId":88,"title":"ADW-1 [Merkle] X","status":"active"}]}`))
	}))

	result, err := client.FindActivePullRequest(context.Background(), "repo-id", "feature/ADW-1-x", "dev")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 88, result.ID)
	assert.True(t, result.AlreadyExisted)
	assert.Contains(t, result.URL, "/pullrequest/88")
}

func draftFor(source, target string) models.PRDraft {
	return models.PRDraft{
		Source: models.UntrackedBranchRef(source),
		Target: models.UntrackedBranchRef(target),
		Ticket: "ADW-1",
		Title:  "ADW-1 [Merkle] X",
	}
}

func TestCreatePullRequest(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte(`{"pullRequestId":99,"title":"ADW-1 [Merkle] X","status":"active"}`))
	}))

	result, err := client.CreatePullRequest(context.Background(), "repo-id", draftFor("feature/ADW-1-x", "dev"))
	require.NoError(t, err)
	assert.Equal(t, 99, result.ID)
	assert.False(t, result.AlreadyExisted)
}

func TestCreatePullRequestNeverRetried(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	_, err := client.CreatePullRequest(context.Background(), "repo-id", draftFor("feature/ADW-1-x", "dev"))
	require.Error(t, err)

	var failed *SubmissionFailed
	assert.True(t, errors.As(err, &failed))
	// Exactly one attempt: a create is never silently re-sent
	assert.Equal(t, 1, attempts)
}

func TestCreatePullRequestConflictResolvesToExisting(t *testing.T) {
	creates := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/DigitalExperience/_apis/git/repositories/repo-id/pullrequests", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			creates++
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"message":"TF401179: An active pull request for the source and target branch already exists."}`))
			return
		}
		w.Write([]byte(`{"count":1,"value":[{"pullRequestId":77,"title":"ADW-1 [Merkle] X","status":"active"}]}`))
	})

	client, _ := newTestClient(t, mux)

	result, err := client.CreatePullRequest(context.Background(), "repo-id", draftFor("feature/ADW-1-x", "dev"))
	require.NoError(t, err)
	assert.Equal(t, 77, result.ID)
	assert.True(t, result.AlreadyExisted)
	assert.Equal(t, 1, creates)
}

func TestCreatePullRequestMissingID(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))

	_, err := client.CreatePullRequest(context.Background(), "repo-id", draftFor("feature/ADW-1-x", "dev"))

	var failed *SubmissionFailed
	require.True(t, errors.As(err, &failed))
	assert.Contains(t, failed.Reason, "no pull request id")
}

func TestWebURLRewritesVisualStudioHost(t *testing.T) {
	client := NewClient(Options{
		OrgURL:     "https://mpcoderepo.visualstudio.com",
		Project:    "DigitalExperience",
		Repository: "aemaacs-life",
	})

	assert.Equal(t,
		"https://dev.azure.com/mpcoderepo/DigitalExperience/_git/aemaacs-life/pullrequest/42",
		client.WebURL(42))
}

func TestWebURLKeepsModernHost(t *testing.T) {
	client := NewClient(Options{
		OrgURL:     "https://dev.azure.com/mpcoderepo",
		Project:    "DigitalExperience",
		Repository: "aemaacs-life",
	})

	assert.Equal(t,
		"https://dev.azure.com/mpcoderepo/DigitalExperience/_git/aemaacs-life/pullrequest/42",
		client.WebURL(42))
}

func TestRetryDelayCapped(t *testing.T) {
	rc := &RetryConfig{MaxAttempts: 5, InitialDelay: 500 * time.Millisecond, MaxDelay: 5 * time.Second}

	assert.Equal(t, 500*time.Millisecond, rc.Delay(0))
	assert.Equal(t, time.Second, rc.Delay(1))
	assert.Equal(t, 2*time.Second, rc.Delay(2))
	assert.Equal(t, 4*time.Second, rc.Delay(3))
	assert.Equal(t, 5*time.Second, rc.Delay(4))
}
