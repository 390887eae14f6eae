package describe

import (
	"fmt"

	"github.com/merkle-dx/adopr/internal/models"
)

// SyncDraft builds the fixed draft for the periodic sync of the stable
// branch into the integration branch. Nothing about it depends on local
// commits: the title and body are constant apart from the configured
// sync ticket.
func SyncDraft(source, target models.BranchRef, ticket models.TicketID, orgTag, trackerBaseURL string) models.PRDraft {
	return models.PRDraft{
		Source:      source,
		Target:      target,
		Ticket:      ticket,
		Title:       fmt.Sprintf("%s [%s] %s to %s", ticket, orgTag, source.Name, target.Name),
		Description: syncDescription(ticket, source.Name, target.Name, trackerBaseURL),
	}
}

func syncDescription(ticket models.TicketID, source, target, trackerBaseURL string) string {
	return fmt.Sprintf(`## What does this PR do?

%s to %s sync

---

## What are the relevant tickets?

[%s](%s/%s)

---

## Has the Sonarqube scan for your branch been reviewed to make sure no new issues have been introduced?

- [ ] YES - Sonarqube scan has been reviewed and no new issues have been introduced
- [ ] NO - Sonarqube scan has NOT been reviewed (explanation required below)

---

## Describe how these changes have been tested

Routine branch sync, no functional changes.

---

## Additional Resources / Comments

None.
`, source, target, ticket, trackerBaseURL, ticket)
}
