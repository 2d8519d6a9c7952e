package mbim

// Subscription is a set of command ids a client wants notifications for
// on one service. A nil or empty CIDs set means "all notifications of
// this service".
type Subscription struct {
	Service UUID
	CIDs    map[uint32]struct{}
}

// SubscriptionList is a per-service set of subscriptions, keyed by
// service UUID for O(1) merge lookups.
type SubscriptionList map[UUID]map[uint32]struct{}

// standardSubscriptionCIDs are the hard-coded command ids making up the
// canonical standard-subscription list, per 4.7: basic-connect, sms,
// ussd, phonebook, stk, each with their well-known notification CIDs.
var standardSubscriptionCIDs = map[UUID]map[uint32]struct{}{
	UUIDBasicConnect: {
		CIDBasicConnectSubscriberReadyStatus: {},
		CIDBasicConnectRegisterState:         {},
		CIDBasicConnectSignalState:           {},
		CIDBasicConnectConnect:               {},
	},
	UUIDSMS:       {},
	UUIDUSSD:      {},
	UUIDPhonebook: {},
	UUIDSTK:       {},
}

// StandardSubscriptionList returns a fresh copy of the canonical standard
// subscription list: an aggregator always includes this, never merged
// from downstream additions (4.7).
func StandardSubscriptionList() SubscriptionList {
	out := make(SubscriptionList, len(standardSubscriptionCIDs))
	for svc, cids := range standardSubscriptionCIDs {
		out[svc] = cloneCIDSet(cids)
	}
	return out
}

func cloneCIDSet(cids map[uint32]struct{}) map[uint32]struct{} {
	out := make(map[uint32]struct{}, len(cids))
	for c := range cids {
		out[c] = struct{}{}
	}
	return out
}

// Merge computes the union of base with addition, following 4.7's rules:
// standard services are left untouched (the aggregator's own standard
// subscription is authoritative); a non-standard service in addition
// either appends a new entry or extends the existing entry's CID set; if
// addition asks for "all cids" (empty set) on an existing entry, that
// entry's CID set is cleared to mean the same.
func Merge(base SubscriptionList, addition SubscriptionList) SubscriptionList {
	out := make(SubscriptionList, len(base))
	for svc, cids := range base {
		out[svc] = cloneCIDSet(cids)
	}

	for svc, addCIDs := range addition {
		if _, isStandard := standardSubscriptionCIDs[svc]; isStandard {
			continue
		}

		existing, ok := out[svc]
		if !ok {
			out[svc] = cloneCIDSet(addCIDs)
			continue
		}

		if len(addCIDs) == 0 {
			out[svc] = map[uint32]struct{}{}
			continue
		}
		if len(existing) == 0 {
			// already "all cids"; stays that way
			continue
		}
		for c := range addCIDs {
			existing[c] = struct{}{}
		}
	}
	return out
}

// Equal reports structural equality between two subscription lists:
// order-independent, per 4.7.
func Equal(a, b SubscriptionList) bool {
	if len(a) != len(b) {
		return false
	}
	for svc, aCIDs := range a {
		bCIDs, ok := b[svc]
		if !ok || len(aCIDs) != len(bCIDs) {
			return false
		}
		for c := range aCIDs {
			if _, ok := bCIDs[c]; !ok {
				return false
			}
		}
	}
	return true
}
