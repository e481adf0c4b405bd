package eventbus

import "fmt"

const (
	// SubjectPrefix is the canonical prefix for distributed dispatch events.
	SubjectPrefix = "sigbus.v1.dispatch"
)

// Domain identifies which dispatch adapter family a subject belongs to.
type Domain string

const (
	DomainBus    Domain = "bus"
	DomainPubSub Domain = "pubsub"
)

// BusSubject returns the canonical subject for a bus adapter's named stream.
func BusSubject(busName, stream string) string {
	return fmt.Sprintf("%s.%s.%s.%s", SubjectPrefix, DomainBus, sanitizeSegment(busName), sanitizeSegment(stream))
}

// PubSubSubject returns the canonical subject for a pubsub adapter's topic.
func PubSubSubject(broker, topic string) string {
	return fmt.Sprintf("%s.%s.%s.%s", SubjectPrefix, DomainPubSub, sanitizeSegment(broker), sanitizeSegment(topic))
}

// DomainWildcardSubject returns the canonical wildcard subject for a
// domain, using this project's own multi-wildcard token ("**", see
// pkg/router's pattern syntax) rather than a transport-specific one, so
// a subscriber's subject pattern reads the same as a route pattern.
func DomainWildcardSubject(domain Domain) string {
	return fmt.Sprintf("%s.%s.**", SubjectPrefix, sanitizeSegment(string(domain)))
}

func sanitizeSegment(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
