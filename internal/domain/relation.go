package domain

// Relation is the persisted state of an unordered gamer pair. The pair is
// stored once, keyed by (low, high) with low < high, so the friendship bit is
// shared by both sides.
type Relation uint8

const (
	RelationFriends Relation = 1 << iota
	// low asked high to be friends; high has not answered
	RelationLowRequested
	RelationHighRequested
	// low blocked high
	RelationLowBlocked
	RelationHighBlocked
)

// Pair orders two gamer ids into the canonical (low, high) key
func Pair(a, b string) (low, high string) {
	if a < b {
		return a, b
	}
	return b, a
}

// Has reports whether all bits of flag are set
func (r Relation) Has(flag Relation) bool {
	return r&flag == flag
}

// View returns what self sees of the pair: whether peer is a friend, whether
// peer is waiting on self, and whether self blocked peer.
func (r Relation) View(self, peer string) (friend, waiting, blocked bool) {
	friend = r.Has(RelationFriends)
	if self < peer {
		return friend, r.Has(RelationHighRequested), r.Has(RelationLowBlocked)
	}
	return friend, r.Has(RelationLowRequested), r.Has(RelationHighBlocked)
}

// ownedBy returns the bits that self's aggregate is the source of truth for.
func ownedBy(self, peer string) Relation {
	if self < peer {
		return RelationFriends | RelationHighRequested | RelationLowBlocked
	}
	return RelationFriends | RelationLowRequested | RelationHighBlocked
}

// Merge rewrites the bits owned by self from self's in-memory view and keeps
// the bits owned by peer untouched.
func (r Relation) Merge(self, peer string, friend, waiting, blocked bool) Relation {
	next := r &^ ownedBy(self, peer)
	if friend {
		next |= RelationFriends
	}
	if self < peer {
		if waiting {
			next |= RelationHighRequested
		}
		if blocked {
			next |= RelationLowBlocked
		}
		return next
	}
	if waiting {
		next |= RelationLowRequested
	}
	if blocked {
		next |= RelationHighBlocked
	}
	return next
}

// MergeGamer computes the new pair states for every peer g has a relation
// with, given the currently stored states keyed by peer id. A zero state
// means the pair row should be deleted.
func MergeGamer(g *Gamer, stored map[string]Relation) map[string]Relation {
	out := make(map[string]Relation, len(stored))
	for peer := range stored {
		out[peer] = 0
	}
	for peer := range g.Peers() {
		out[peer] = 0
	}
	for peer := range out {
		friend, waiting, blocked := g.RelationTo(peer)
		out[peer] = stored[peer].Merge(g.ID, peer, friend, waiting, blocked)
	}
	return out
}

// ApplyRelations fills g's relationship sets from stored pair states keyed by
// peer id.
func ApplyRelations(g *Gamer, stored map[string]Relation) {
	g.Friends = NewIDSet()
	g.WaitingFriends = NewIDSet()
	g.BlockedFriends = NewIDSet()
	for peer, r := range stored {
		friend, waiting, blocked := r.View(g.ID, peer)
		if friend {
			g.Friends.Add(peer)
		}
		if waiting {
			g.WaitingFriends.Add(peer)
		}
		if blocked {
			g.BlockedFriends.Add(peer)
		}
	}
}
