package dataprocessing

import (
	"fmt"
	"strings"

	"ledgercli/pkg/contracts/domain"
)

// naturalKey is the tuple of observable transaction attributes used to
// recognize the same real-world transaction across overlapping file uploads.
// SequenceNumber and SourceFile are deliberately excluded: the same
// transaction reappears with a different sequence number when export ranges
// overlap, and always with a different source file.
func naturalKey(t domain.Transaction) string {
	return strings.Join([]string{
		t.TimestampText,
		fmt.Sprintf("%d|%d|%d", t.Debit, t.Credit, t.Balance),
		t.Description,
		t.Memo,
		t.Branch,
	}, "|")
}

// Dedupe removes duplicate transactions, keeping the first occurrence of
// each natural key in input order. It returns a new slice; the input is
// never mutated. Applying Dedupe to its own output is a no-op.
func Dedupe(txns []domain.Transaction) ([]domain.Transaction, int) {
	seen := make(map[string]struct{}, len(txns))
	out := make([]domain.Transaction, 0, len(txns))
	removed := 0

	for _, t := range txns {
		key := naturalKey(t)
		if _, dup := seen[key]; dup {
			removed++
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}

	return out, removed
}
