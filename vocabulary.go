package retriever

import "sort"

// Vocabulary is the immutable term -> column mapping shared by the boolean
// and weighted representations of an index. Columns are assigned in
// alphabetical term order, so fitting the same documents always yields the
// same columns.
//
// A Vocabulary is never extended: terms first seen after fitting are out of
// vocabulary and dropped.
type Vocabulary struct {
	columns map[string]uint32
	terms   []string
}

// newVocabulary builds a vocabulary from a set of terms.
func newVocabulary(termSet map[string]struct{}) *Vocabulary {
	terms := make([]string, 0, len(termSet))
	for t := range termSet {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	columns := make(map[string]uint32, len(terms))
	for i, t := range terms {
		columns[t] = uint32(i)
	}
	return &Vocabulary{columns: columns, terms: terms}
}

// Column returns the column of term and whether the term is in the vocabulary.
func (v *Vocabulary) Column(term string) (uint32, bool) {
	col, ok := v.columns[term]
	return col, ok
}

// Term returns the term at column col, or "" when col is out of range.
func (v *Vocabulary) Term(col uint32) string {
	if int(col) >= len(v.terms) {
		return ""
	}
	return v.terms[col]
}

// Size returns the number of terms (columns).
func (v *Vocabulary) Size() int {
	return len(v.terms)
}

// Terms returns a copy of the terms ordered by column.
func (v *Vocabulary) Terms() []string {
	return append([]string(nil), v.terms...)
}
