package types

// PubSubType names a message transport backend.
type PubSubType string

// MemoryPubSub runs the webhook pipeline over in-process channels. A broker
// backed transport would register here alongside it.
const MemoryPubSub PubSubType = "memory"
