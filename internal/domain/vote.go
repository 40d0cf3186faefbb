package domain

import "strings"

// Vote is a player's verdict on the active player's question or guess
type Vote string

const (
	VoteYes   Vote = "YES"
	VoteNo    Vote = "NO"
	VoteMaybe Vote = "MAYBE"
)

// ParseVote converts wire text into a Vote
func ParseVote(s string) (Vote, error) {
	switch v := Vote(strings.ToUpper(strings.TrimSpace(s))); v {
	case VoteYes, VoteNo, VoteMaybe:
		return v, nil
	default:
		return "", ErrInvalidVote
	}
}

// Valid reports whether v is one of the known votes
func (v Vote) Valid() bool {
	return v == VoteYes || v == VoteNo || v == VoteMaybe
}

// VoteTally summarizes the votes cast on a turn
type VoteTally struct {
	Yes   int `json:"yes"`
	No    int `json:"no"`
	Maybe int `json:"maybe"`
}

// TallyVotes counts votes by kind
func TallyVotes(votes map[string]Vote) VoteTally {
	var t VoteTally
	for _, v := range votes {
		switch v {
		case VoteYes:
			t.Yes++
		case VoteNo:
			t.No++
		case VoteMaybe:
			t.Maybe++
		}
	}
	return t
}

// Accepted reports whether the guess is judged correct. MAYBE votes are
// ignored and a YES/NO tie is a rejection.
func (t VoteTally) Accepted() bool {
	return t.Yes > t.No
}
