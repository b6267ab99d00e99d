package domain

// Socket event names shared by the gateway and the services that push
// through it. They are part of the wire contract with the web client.
const (
	EventCreateDirectMessage = "create-direct-message"
	EventCreateGroupMessage  = "create-group-message"
	EventDeleteDirectMessage = "delete-direct-message"
	EventDeleteGroupMessage  = "delete-group-message"

	EventRequestCall       = "request-call"
	EventAcceptRequestCall = "accept-request-call"
	EventCancelCall        = "cancel-call"
	EventCallSignal        = "call-signal"
)

// Pagination is the page/take pair used by every listing endpoint.
type Pagination struct {
	Page int `form:"page"`
	Take int `form:"take"`
}

func (p Pagination) Normalized() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Take < 1 || p.Take > 100 {
		p.Take = 20
	}
	return p
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Take
}
