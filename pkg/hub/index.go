package hub

// subscriptionRef is one bound (topic, label?) pair of a Subscribe call.
type subscriptionRef struct {
	topic     string
	label     string
	hasLabel  bool
	handler   Handler
	namespace string
	context   any
}

type topicLabelKey struct {
	topic string
	label string
}

// index holds the subscriptions of a hub.
//
// A ref lives in exactly one of byTopic or byTopicLabel, and additionally in
// byNamespace when it carries a namespace. Bucket slices are never mutated in
// place once published: removal builds a new slice, so a snapshot handed to a
// publish stays valid.
type index struct {
	byTopic      map[string][]*subscriptionRef
	byTopicLabel map[topicLabelKey][]*subscriptionRef
	byNamespace  map[string][]*subscriptionRef
	count        int
}

func newIndex() *index {
	return &index{
		byTopic:      make(map[string][]*subscriptionRef),
		byTopicLabel: make(map[topicLabelKey][]*subscriptionRef),
		byNamespace:  make(map[string][]*subscriptionRef),
	}
}

func (ix *index) add(ref *subscriptionRef) {
	if ref.namespace != "" {
		ix.byNamespace[ref.namespace] = append(ix.byNamespace[ref.namespace], ref)
	}
	if ref.hasLabel {
		key := topicLabelKey{ref.topic, ref.label}
		ix.byTopicLabel[key] = append(ix.byTopicLabel[key], ref)
	} else {
		ix.byTopic[ref.topic] = append(ix.byTopic[ref.topic], ref)
	}
	ix.count++
}

// labelRefs returns a copy of the refs bound to every topic × label pair,
// topics outermost.
func (ix *index) labelRefs(topics, labels []string) []*subscriptionRef {
	var refs []*subscriptionRef
	for _, topic := range topics {
		for _, label := range labels {
			refs = append(refs, ix.byTopicLabel[topicLabelKey{topic, label}]...)
		}
	}
	return refs
}

// topicRefs returns a copy of the topic-only refs of every topic.
func (ix *index) topicRefs(topics []string) []*subscriptionRef {
	var refs []*subscriptionRef
	for _, topic := range topics {
		refs = append(refs, ix.byTopic[topic]...)
	}
	return refs
}

// removeNamespace drops every ref tagged ns from its topic bucket and then
// deletes the namespace entry. It returns the number of refs removed.
func (ix *index) removeNamespace(ns string) int {
	refs, ok := ix.byNamespace[ns]
	if !ok {
		return 0
	}
	for _, ref := range refs {
		if ref.hasLabel {
			key := topicLabelKey{ref.topic, ref.label}
			if rest := without(ix.byTopicLabel[key], ref); len(rest) > 0 {
				ix.byTopicLabel[key] = rest
			} else {
				delete(ix.byTopicLabel, key)
			}
		} else {
			if rest := without(ix.byTopic[ref.topic], ref); len(rest) > 0 {
				ix.byTopic[ref.topic] = rest
			} else {
				delete(ix.byTopic, ref.topic)
			}
		}
	}
	delete(ix.byNamespace, ns)
	ix.count -= len(refs)
	return len(refs)
}

// without returns a new slice holding every element of refs except target.
func without(refs []*subscriptionRef, target *subscriptionRef) []*subscriptionRef {
	out := make([]*subscriptionRef, 0, len(refs))
	for _, r := range refs {
		if r != target {
			out = append(out, r)
		}
	}
	return out
}
