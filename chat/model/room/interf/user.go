package interf

import (
	"github.com/rutgers-cs352/netxfer/chat/model/message"
)

// Broadcaster is implemented by rooms that can broadcast a message
// to a channel of subscribers.
type Broadcaster interface {
	Broadcaster() chan<- message.Message
}

type User interface {
	Error() chan<- error
	Receive(message.Message)
	Username() string
	// Dynamically change the message dispatcher
	SetBroadcaster(Broadcaster)
	// String() prints username with style
	String() string
}
