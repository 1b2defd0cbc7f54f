package digest

// PRSummary is the slice of pull request state the digest renders.
type PRSummary struct {
	RepositoryID int64
	RepoFullName string
	Number       int
	Title        string
	HTMLURL      string
	Author       string
	Draft        bool
}

// Buckets holds the four digest categories. Every open, in-scope pull
// request lands in exactly one bucket; anything the categorizer cannot
// place is logged and counted as unmatched, never dropped silently.
type Buckets struct {
	WaitingOnUser        []PRSummary
	ApprovedReadyToMerge []PRSummary
	UserOpenPRs          []PRSummary
	UserDraftPRs         []PRSummary
}

// Total counts pull requests across all buckets.
func (b Buckets) Total() int {
	return len(b.WaitingOnUser) + len(b.ApprovedReadyToMerge) + len(b.UserOpenPRs) + len(b.UserDraftPRs)
}

// Merge appends every bucket of other onto b.
func (b *Buckets) Merge(other Buckets) {
	b.WaitingOnUser = append(b.WaitingOnUser, other.WaitingOnUser...)
	b.ApprovedReadyToMerge = append(b.ApprovedReadyToMerge, other.ApprovedReadyToMerge...)
	b.UserOpenPRs = append(b.UserOpenPRs, other.UserOpenPRs...)
	b.UserDraftPRs = append(b.UserDraftPRs, other.UserDraftPRs...)
}

// Scope selects whose pull requests a digest considers.
type Scope string

const (
	ScopeUser Scope = "user"
	ScopeTeam Scope = "team"
)

// DeliveryType selects where a digest is sent.
type DeliveryType string

const (
	DeliveryDM      DeliveryType = "dm"
	DeliveryChannel DeliveryType = "channel"
	DeliveryEmail   DeliveryType = "email"
)
