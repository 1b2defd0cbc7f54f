package blockkit

import (
	"fmt"
	"strings"

	"prpulse/internal/domain/digest"
)

// maxListItems caps each digest section; longer lists show the first
// five entries plus an "...and N more" marker.
const maxListItems = 5

type digestSection struct {
	title string
	icon  string
	prs   []digest.PRSummary
}

// RenderDigest formats categorized pull request buckets as a digest
// message.
func RenderDigest(buckets digest.Buckets, configName string, scope digest.Scope, teamName string) Message {
	title := fmt.Sprintf("Pull request digest · %s", configName)
	if scope == digest.ScopeTeam && teamName != "" {
		title = fmt.Sprintf("Pull request digest · %s (team %s)", configName, teamName)
	}

	blocks := []Block{
		Header(title),
		Context(fmt.Sprintf("%d open pull requests across your repositories", buckets.Total())),
	}

	for _, section := range digestSections(buckets) {
		if len(section.prs) == 0 {
			continue
		}
		blocks = append(blocks, Divider())
		blocks = append(blocks, Section(fmt.Sprintf("%s *%s* (%d)", section.icon, section.title, len(section.prs))))
		blocks = append(blocks, Section(formatPRList(section.prs)))
	}

	return Message{Text: title, Blocks: blocks}
}

// RenderDigestEmail formats the same buckets as a plain-text email.
func RenderDigestEmail(buckets digest.Buckets, configName string, scope digest.Scope, teamName string) (string, string) {
	subject := fmt.Sprintf("Pull request digest: %s (%d open)", configName, buckets.Total())

	var body strings.Builder
	body.WriteString(fmt.Sprintf("Pull request digest for %s\n", configName))
	if scope == digest.ScopeTeam && teamName != "" {
		body.WriteString(fmt.Sprintf("Team: %s\n", teamName))
	}
	body.WriteString("\n")

	for _, section := range digestSections(buckets) {
		if len(section.prs) == 0 {
			continue
		}
		body.WriteString(fmt.Sprintf("%s (%d)\n", section.title, len(section.prs)))
		shown, more := truncateList(section.prs)
		for _, pr := range shown {
			body.WriteString(fmt.Sprintf("  - %s #%d %s (%s) %s\n", pr.RepoFullName, pr.Number, pr.Title, pr.Author, pr.HTMLURL))
		}
		if more > 0 {
			body.WriteString(fmt.Sprintf("  ...and %d more\n", more))
		}
		body.WriteString("\n")
	}

	return subject, body.String()
}

func digestSections(buckets digest.Buckets) []digestSection {
	return []digestSection{
		{title: "Waiting on your review", icon: "👀", prs: buckets.WaitingOnUser},
		{title: "Approved and ready to merge", icon: "✅", prs: buckets.ApprovedReadyToMerge},
		{title: "Your open pull requests", icon: "📬", prs: buckets.UserOpenPRs},
		{title: "Your drafts", icon: "📝", prs: buckets.UserDraftPRs},
	}
}

func formatPRList(prs []digest.PRSummary) string {
	shown, more := truncateList(prs)

	lines := make([]string, 0, len(shown)+1)
	for _, pr := range shown {
		lines = append(lines, fmt.Sprintf("• <%s|%s #%d> %s — %s", pr.HTMLURL, pr.RepoFullName, pr.Number, Truncate(pr.Title, 80), pr.Author))
	}
	if more > 0 {
		lines = append(lines, fmt.Sprintf("_...and %d more_", more))
	}
	return strings.Join(lines, "\n")
}

func truncateList(prs []digest.PRSummary) ([]digest.PRSummary, int) {
	if len(prs) <= maxListItems {
		return prs, 0
	}
	return prs[:maxListItems], len(prs) - maxListItems
}
