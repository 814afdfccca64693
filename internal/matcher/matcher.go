// Package matcher finds the sanctioned entity whose name best matches a query
// using a token-set similarity score.
package matcher

import "github.com/joelkehle/sanctionguard/internal/sanctions"

// Matcher holds the entity list together with a parallel list of pre-tokenized
// names. It is read-only after New and safe for concurrent use.
type Matcher struct {
	entities []sanctions.Entity
	tokens   [][]string
}

func New(entities []sanctions.Entity) *Matcher {
	m := &Matcher{
		entities: entities,
		tokens:   make([][]string, len(entities)),
	}
	for i, e := range entities {
		m.tokens[i] = tokenize(e.Name)
	}
	return m
}

func (m *Matcher) Len() int { return len(m.entities) }

// Best returns the highest-scoring entity and its score. Ties go to the
// earliest entity in list order. An empty list yields (nil, 0).
func (m *Matcher) Best(query string) (*sanctions.Entity, float64) {
	if len(m.entities) == 0 {
		return nil, 0
	}
	q := tokenize(query)
	bestIdx, bestScore := 0, -1.0
	for i, t := range m.tokens {
		if s := tokenSetRatio(q, t); s > bestScore {
			bestIdx, bestScore = i, s
			if s == 100 {
				break
			}
		}
	}
	e := m.entities[bestIdx]
	return &e, bestScore
}

// Match scores query against entities without keeping an index around.
func Match(query string, entities []sanctions.Entity) (*sanctions.Entity, float64) {
	return New(entities).Best(query)
}
