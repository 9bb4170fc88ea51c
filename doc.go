/*
Package retriever provides a small in-memory information retrieval engine for Go.

It indexes a collection of text documents, answers free-text queries with a
ranked list of document ids, grows the index without rebuilding it, and
scores ranking quality against relevance judgments (MRR, MAP, NDCG@k).

# Quick Start

	package main

	import (
	    "fmt"
	    "log"

	    "github.com/wizenheimer/retriever"
	)

	func main() {
	    engine, err := retriever.New()
	    if err != nil {
	        log.Fatal(err)
	    }

	    docs := []string{"the quick", "brown fox", "jumps over", "the lazy dog"}
	    if err := engine.Fit(docs, nil); err != nil {
	        log.Fatal(err)
	    }

	    // Appended documents get ids 4, 5, ... and reuse the fitted vocabulary.
	    if err := engine.PartialFit([]string{"new fox doc"}, nil); err != nil {
	        log.Fatal(err)
	    }

	    ids, err := engine.Query("new fox doc", 2)
	    if err != nil {
	        log.Fatal(err)
	    }
	    fmt.Println(ids) // [4 1]
	}

# Retrieval

A query runs through two stages over two views of the same documents, built
together at index time:

  - Matching reads the boolean term-presence matrix (TermMatrix). By default
    it keeps every document sharing at least one vocabulary term with the
    query: the union of the posting lists of the query terms, computed on
    roaring bitmaps. See MatchingKind for the alternatives.
  - Ranking reads the weighted matrix (WeightMatrix), restricted to the
    candidates, and orders them by distance to the query vector (cosine by
    default). Ties go to the earlier indexed document.

Ranking never sees a document that matching rejected, and is skipped entirely
when nothing matches.

# Vocabulary

Fit tokenizes the documents (NFKC normalization, lower-casing, UAX#29 word
segmentation, tokens of two or more characters), fixes an alphabetical
vocabulary, and computes TF-IDF weights. PartialFit reuses that vocabulary:
terms it does not know are dropped from new documents and from queries.
Refit to learn new terms.

# Evaluation

	queries := []retriever.Query{{ID: "q1", Text: "fox"}}
	judgments := retriever.NestedJudgments{"q1": {1: 1}}
	scores, err := engine.Evaluate(queries, judgments, 20)
	// scores[retriever.MeanReciprocalRankMetric] == 1

Judgments is a single lookup capability with several adapters (PairJudgments,
NestedJudgments, MatrixJudgments, JudgmentsFunc). Missing judgments count as
not relevant. VectorizeQueries and Score evaluate the same batch repeatedly
without re-vectorizing it.

# Configuration

Engines are configured with functional options, or from YAML:

	cfg, err := retriever.LoadConfig("retriever.yaml")
	logger, closeLog, err := retriever.NewLogger(cfg.Logging)
	defer closeLog()
	engine, err := retriever.NewFromConfig(cfg, retriever.WithLogger(logger))

# Thread Safety

Engine is safe for concurrent use. Queries and evaluations run in parallel
with each other; Fit and PartialFit wait for them and block them.
*/
package retriever
