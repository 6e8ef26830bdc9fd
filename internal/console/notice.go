package console

// NoticeKind is the severity of a Notice.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "SUCCESS"
	NoticeError   NoticeKind = "ERROR"
)

// Notice is the single transient message shown to the user.
type Notice struct {
	Kind NoticeKind
	Text string
}

func successNotice(text string) *Notice { return &Notice{Kind: NoticeSuccess, Text: text} }
func errorNotice(text string) *Notice   { return &Notice{Kind: NoticeError, Text: text} }

// User-facing texts.
const (
	msgListFailed       = "could not load the list"
	msgSaveFailed       = "could not save"
	msgDeactivateFailed = "could not deactivate"
	msgInvalidForm      = "complete the description field correctly"
	msgNoSelection      = "select a record first"
	msgNothingToSave    = "nothing to save"
	msgCreated          = "record created"
	msgUpdated          = "record updated"
	msgDeactivated      = "record deactivated"
)
