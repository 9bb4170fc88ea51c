package retriever

import "strconv"

// QueryID identifies a query in relevance judgments.
type QueryID string

// Query is a free-text query labelled for evaluation.
type Query struct {
	ID   QueryID
	Text string
}

// QueriesFromTexts labels texts with their positions "0", "1", ... which is
// how MatrixJudgments addresses its rows.
func QueriesFromTexts(texts []string) []Query {
	queries := make([]Query, len(texts))
	for i, t := range texts {
		queries[i] = Query{ID: QueryID(strconv.Itoa(i)), Text: t}
	}
	return queries
}

// Judgments looks up the graded relevance of a document for a query.
//
// Every implementation returns 0 for pairs it knows nothing about; a missing
// judgment is never an error.
type Judgments interface {
	Relevance(query QueryID, doc uint32) float64
}

// JudgmentsFunc adapts an ordinary function to Judgments.
type JudgmentsFunc func(query QueryID, doc uint32) float64

// Relevance calls f(query, doc).
func (f JudgmentsFunc) Relevance(query QueryID, doc uint32) float64 {
	return f(query, doc)
}

// JudgmentKey is a (query, document) pair.
type JudgmentKey struct {
	Query QueryID
	Doc   uint32
}

// PairJudgments is a flat mapping from (query, document) pairs to relevance.
type PairJudgments map[JudgmentKey]float64

// Relevance implements Judgments.
func (j PairJudgments) Relevance(query QueryID, doc uint32) float64 {
	return j[JudgmentKey{Query: query, Doc: doc}]
}

// NestedJudgments maps a query to its own document -> relevance mapping.
type NestedJudgments map[QueryID]map[uint32]float64

// Relevance implements Judgments.
func (j NestedJudgments) Relevance(query QueryID, doc uint32) float64 {
	return j[query][doc]
}

// MatrixJudgments is a dense relevance matrix: row q holds the judgments of
// the query whose id is the decimal number q, column d those of document d.
// Ids that are not in range, or not numbers, have relevance 0.
type MatrixJudgments [][]float64

// Relevance implements Judgments.
func (j MatrixJudgments) Relevance(query QueryID, doc uint32) float64 {
	q, err := strconv.Atoi(string(query))
	if err != nil || q < 0 || q >= len(j) {
		return 0
	}
	row := j[q]
	if int(doc) >= len(row) {
		return 0
	}
	return row[doc]
}
