package pubsub

import (
	"context"
	"encoding/json"
)

const (
	EventDIDCreated        = "didCreated"        // EventDIDCreated a new did document was anchored
	EventCredentialIssued  = "credentialIssued"  // EventCredentialIssued a credential was issued
	EventCredentialRevoked = "credentialRevoked" // EventCredentialRevoked a credential was revoked
)

// Event defines the payload
type Event interface {
	Marshal() (msg Message, err error)
	Unmarshal(msg Message) error
}

// Message is the payload received in a pubsub subscriber. The input for callback functions
type Message []byte

// DIDCreatedEvent defines the didCreated data
type DIDCreatedEvent struct {
	DID        string `json:"did"`
	Controller string `json:"controller"`
}

// Marshal marshals the event into a pubsub.Message
func (ev *DIDCreatedEvent) Marshal() (msg Message, err error) {
	return json.Marshal(ev)
}

// Unmarshal creates an event from that message
func (ev *DIDCreatedEvent) Unmarshal(msg Message) error {
	return json.Unmarshal(msg, &ev)
}

// CredentialIssuedEvent defines the credentialIssued data
type CredentialIssuedEvent struct {
	CredentialID string `json:"credentialID"`
	IssuerDID    string `json:"issuerDID"`
	SubjectDID   string `json:"subjectDID"`
}

// Marshal marshals the event into a pubsub.Message
func (ev *CredentialIssuedEvent) Marshal() (msg Message, err error) {
	return json.Marshal(ev)
}

// Unmarshal creates an event from that message
func (ev *CredentialIssuedEvent) Unmarshal(msg Message) error {
	return json.Unmarshal(msg, &ev)
}

// CredentialRevokedEvent defines the credentialRevoked data
type CredentialRevokedEvent struct {
	CredentialID string `json:"credentialID"`
	IssuerDID    string `json:"issuerDID"`
}

// Marshal marshals the event into a pubsub.Message
func (ev *CredentialRevokedEvent) Marshal() (msg Message, err error) {
	return json.Marshal(ev)
}

// Unmarshal creates an event from that message
func (ev *CredentialRevokedEvent) Unmarshal(msg Message) error {
	return json.Unmarshal(msg, &ev)
}

// Publisher sends topics to the pubsub
type Publisher interface {
	Publish(ctx context.Context, topic string, payload Event) error
}

// EventHandler is the type that functions that handle an Event must comply.
type EventHandler func(context.Context, Message) error

// Subscriber subscribes to the pubsub topics
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, callback EventHandler)
}

// Client is formed by the publisher and subscriber
type Client interface {
	Publisher
	Subscriber
}
