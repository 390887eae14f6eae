package azdevops

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/merkle-dx/adopr/internal/logging"
	"github.com/merkle-dx/adopr/internal/models"
)

const (
	apiVersion       = "7.0"
	createAPIVersion = "7.1"
)

type repository struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type listResponse[T any] struct {
	Count int `json:"count"`
	Value []T `json:"value"`
}

type gitRef struct {
	Name string `json:"name"`
}

type pullRequest struct {
	PullRequestID int    `json:"pullRequestId"`
	Title         string `json:"title"`
	Status        string `json:"status"`
	URL           string `json:"url"`
}

// refName normalizes a branch name to a fully qualified ref
func refName(branch string) string {
	if strings.HasPrefix(branch, "refs/heads/") {
		return branch
	}
	return "refs/heads/" + branch
}

// ResolveRepositoryID looks up the configured repository's id by name
func (c *Client) ResolveRepositoryID(ctx context.Context) (string, error) {
	q := url.Values{"api-version": {apiVersion}}
	var repos listResponse[repository]
	if err := c.getJSON(ctx, c.apiURL("/git/repositories", q), &repos); err != nil {
		return "", err
	}

	for _, r := range repos.Value {
		if r.Name == c.repository {
			logging.Logger.Debug("resolved repository", "name", r.Name, "id", r.ID)
			return r.ID, nil
		}
	}
	return "", &NotFoundError{
		APIError: &APIError{StatusCode: 404},
		Resource: "repository " + c.repository + " in project " + c.project,
	}
}

// ListBranches returns branch names, optionally filtered by prefix
func (c *Client) ListBranches(ctx context.Context, repoID, prefix string) ([]string, error) {
	q := url.Values{"api-version": {apiVersion}}
	q.Set("filter", "heads/"+prefix)
	var refs listResponse[gitRef]
	if err := c.getJSON(ctx, c.apiURL("/git/repositories/"+repoID+"/refs", q), &refs); err != nil {
		return nil, err
	}

	branches := make([]string, 0, len(refs.Value))
	for _, r := range refs.Value {
		branches = append(branches, strings.TrimPrefix(r.Name, "refs/heads/"))
	}
	return branches, nil
}

// SearchWorkItems finds work items whose id or title contains the query,
// most recently changed first, mapped to ticket candidates. The WIQL POST
// only reads, so it is retried like a GET.
func (c *Client) SearchWorkItems(ctx context.Context, query string, top int, ticketFromTitle func(string) (models.TicketID, bool)) ([]models.TicketCandidate, error) {
	wiql := fmt.Sprintf(
		"SELECT [System.Id], [System.Title] FROM WorkItems"+
			" WHERE [System.TeamProject] = '%s'"+
			" AND ([System.Id] CONTAINS '%s' OR [System.Title] CONTAINS '%s')"+
			" ORDER BY [System.ChangedDate] DESC",
		c.project, escapeWIQL(query), escapeWIQL(query))

	q := url.Values{"api-version": {apiVersion}}
	var wiqlResp struct {
		WorkItems []struct {
			ID int `json:"id"`
		} `json:"workItems"`
	}
	err := c.postJSON(ctx, c.apiURL("/wit/wiql", q), map[string]string{"query": wiql}, &wiqlResp, true)
	if err != nil {
		return nil, err
	}

	if len(wiqlResp.WorkItems) == 0 {
		return nil, nil
	}
	if len(wiqlResp.WorkItems) > top {
		wiqlResp.WorkItems = wiqlResp.WorkItems[:top]
	}

	ids := make([]string, 0, len(wiqlResp.WorkItems))
	for _, wi := range wiqlResp.WorkItems {
		ids = append(ids, strconv.Itoa(wi.ID))
	}

	q = url.Values{"api-version": {apiVersion}}
	q.Set("ids", strings.Join(ids, ","))
	var items listResponse[struct {
		ID     int `json:"id"`
		Fields struct {
			Title string `json:"System.Title"`
			Type  string `json:"System.WorkItemType"`
		} `json:"fields"`
	}]
	if err := c.getJSON(ctx, c.apiURL("/wit/workitems", q), &items); err != nil {
		return nil, err
	}

	var candidates []models.TicketCandidate
	for _, item := range items.Value {
		id, ok := ticketFromTitle(item.Fields.Title)
		if !ok {
			// Work item without a ticket id in its title: fall back to
			// the numeric work-item id so it stays selectable.
			id = models.TicketID(fmt.Sprintf("WI-%d", item.ID))
		}
		candidates = append(candidates, models.TicketCandidate{
			ID:      id,
			Summary: item.Fields.Title,
			Kind:    item.Fields.Type,
		})
	}
	return candidates, nil
}

// escapeWIQL doubles single quotes inside a WIQL string literal
func escapeWIQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// FindActivePullRequest looks for an open PR for the source→target pair.
// Returns (nil, nil) when none exists.
func (c *Client) FindActivePullRequest(ctx context.Context, repoID, sourceBranch, targetBranch string) (*models.PRResult, error) {
	q := url.Values{"api-version": {apiVersion}}
	q.Set("searchCriteria.status", "active")
	q.Set("searchCriteria.sourceRefName", refName(sourceBranch))
	q.Set("searchCriteria.targetRefName", refName(targetBranch))

	var prs listResponse[pullRequest]
	if err := c.getJSON(ctx, c.apiURL("/git/repositories/"+repoID+"/pullrequests", q), &prs); err != nil {
		return nil, err
	}
	if len(prs.Value) == 0 {
		return nil, nil
	}

	pr := prs.Value[0]
	return &models.PRResult{
		ID:             pr.PullRequestID,
		URL:            c.WebURL(pr.PullRequestID),
		Title:          pr.Title,
		Status:         pr.Status,
		AlreadyExisted: true,
	}, nil
}

// CreatePullRequest submits the draft. The call is made at most once: a
// failed create is reported, never silently retried, because a retry could
// double-submit. A 409 means a PR for the pair already exists and is
// resolved to the existing PR (idempotency).
func (c *Client) CreatePullRequest(ctx context.Context, repoID string, draft models.PRDraft) (*models.PRResult, error) {
	payload := map[string]interface{}{
		"sourceRefName": draft.Source.RefName(),
		"targetRefName": draft.Target.RefName(),
		"title":         draft.Title,
		"description":   draft.Description,
	}
	// PRs into dev auto-complete once policies pass
	if strings.EqualFold(draft.Target.Name, "dev") {
		payload["completionOptions"] = map[string]interface{}{
			"autoCompleteIgnoreConfigIds": []int{},
		}
	}

	q := url.Values{"api-version": {createAPIVersion}}
	var pr pullRequest
	err := c.postJSON(ctx, c.apiURL("/git/repositories/"+repoID+"/pullrequests", q), payload, &pr, false)
	if err != nil {
		var apiErr *APIError
		if asAPIError(err, &apiErr) && apiErr.StatusCode == 409 {
			existing, findErr := c.FindActivePullRequest(ctx, repoID, draft.Source.Name, draft.Target.Name)
			if findErr == nil && existing != nil {
				return existing, nil
			}
		}
		if IsAuthError(err) {
			return nil, err
		}
		return nil, &SubmissionFailed{Reason: "create call rejected", Cause: err}
	}

	if pr.PullRequestID == 0 {
		return nil, &SubmissionFailed{Reason: "create call returned no pull request id"}
	}

	return &models.PRResult{
		ID:     pr.PullRequestID,
		URL:    c.WebURL(pr.PullRequestID),
		Title:  pr.Title,
		Status: pr.Status,
	}, nil
}

// WebURL builds the browser URL for a pull request id. visualstudio.com
// organizations are rewritten to their dev.azure.com form.
func (c *Client) WebURL(prID int) string {
	base := c.orgURL
	if host, ok := strings.CutPrefix(base, "https://"); ok {
		if org, found := strings.CutSuffix(strings.SplitN(host, "/", 2)[0], ".visualstudio.com"); found {
			base = "https://dev.azure.com/" + org
		}
	}
	return fmt.Sprintf("%s/%s/_git/%s/pullrequest/%d", base, url.PathEscape(c.project), url.PathEscape(c.repository), prID)
}
