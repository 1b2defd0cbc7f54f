package blockkit

const (
	defaultColor = "#6a737d"
	defaultIcon  = "🔔"
)

var actionColors = map[string]string{
	"opened":           "#2eb67d",
	"reopened":         "#2eb67d",
	"ready_for_review": "#2eb67d",
	"closed":           "#e01e5a",
	"review_requested": "#ecb22e",
	"assigned":         "#36c5f0",
	"unassigned":       "#6a737d",
	"submitted":        "#36c5f0",
	"created":          "#36c5f0",
}

var actionIcons = map[string]string{
	"opened":           "🆕",
	"reopened":         "♻️",
	"ready_for_review": "👀",
	"closed":           "📕",
	"review_requested": "🙏",
	"assigned":         "🎯",
	"unassigned":       "🌀",
	"created":          "💬",
}

var reviewStateIcons = map[string]string{
	"approved":          "✅",
	"changes_requested": "🔁",
	"commented":         "💬",
	"dismissed":         "🚫",
}

var reviewStateColors = map[string]string{
	"approved":          "#2eb67d",
	"changes_requested": "#e01e5a",
	"commented":         "#36c5f0",
}

func ColorForAction(action string) string {
	if color, ok := actionColors[action]; ok {
		return color
	}
	return defaultColor
}

func IconForAction(action string) string {
	if icon, ok := actionIcons[action]; ok {
		return icon
	}
	return defaultIcon
}

func ColorForReviewState(state string) string {
	if color, ok := reviewStateColors[state]; ok {
		return color
	}
	return defaultColor
}

func IconForReviewState(state string) string {
	if icon, ok := reviewStateIcons[state]; ok {
		return icon
	}
	return defaultIcon
}
