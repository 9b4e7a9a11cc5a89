package protocol

// NoOpHandler implements MessageHandler with no-op methods.
type NoOpHandler struct{}

func (NoOpHandler) HandleActionRecorded(*Envelope, *ActionRecorded) {}
func (NoOpHandler) HandleActionDeleted(*Envelope, *ActionDeleted)   {}

var _ MessageHandler = NoOpHandler{}
