package moderation

// Category names a class of rule violation tracked independently for
// two-strike escalation.
type Category string

const (
	CategoryLinkInMain         Category = "link-in-main"
	CategoryTextInImageChannel Category = "text-in-image-channel"
	CategoryMessageBurst       Category = "message-burst"
)

type Action int

const (
	ActionAllow Action = iota
	ActionDelete
	ActionWarn
	ActionWarnAndDelete
	ActionBan
)

func (a Action) String() string {
	switch a {
	case ActionAllow:
		return "allow"
	case ActionDelete:
		return "delete"
	case ActionWarn:
		return "warn"
	case ActionWarnAndDelete:
		return "warn-and-delete"
	case ActionBan:
		return "ban"
	default:
		return "unknown"
	}
}

// FlagOp tells the caller which offense-flag transition the verdict commits:
// a first offense sets the flag, the escalating second offense consumes it.
type FlagOp int

const (
	FlagOpNone FlagOp = iota
	FlagOpSet
	FlagOpClear
)

type Verdict struct {
	Action   Action
	Reason   string
	Category Category
	FlagOp   FlagOp
}

func allowVerdict() Verdict {
	return Verdict{Action: ActionAllow}
}
