package scoring

import (
	"context"
	"errors"
	"testing"
)

func TestScore_EmptyTurnNeutral(t *testing.T) {
	s := NewScorer(nil, DefaultConfig())
	snap := s.Score(context.Background(), "   ", "prior text about databases", "databases")

	for _, m := range Metrics {
		if snap.Value(m) != 0.5 {
			t.Errorf("%s: got %.2f, want 0.5", m, snap.Value(m))
		}
	}
}

func TestScore_NoPriorTurnCoherenceNeutral(t *testing.T) {
	s := NewScorer(nil, DefaultConfig())
	snap := s.Score(context.Background(), "let us discuss distributed consensus protocols", "", "consensus")

	if snap.Coherence != 0.5 {
		t.Errorf("coherence: got %v, want exactly 0.5", snap.Coherence)
	}
}

func TestScore_Bounds(t *testing.T) {
	s := NewScorer(nil, DefaultConfig())

	tests := []struct {
		name  string
		turn  string
		prior string
		goal  string
	}{
		{"identical-turns", "raft uses leader election", "raft uses leader election", "raft consensus"},
		{"disjoint-turns", "cooking pasta requires salted water", "quantum entanglement experiments", "physics"},
		{"hedge-heavy", "maybe perhaps possibly i think it seems unclear probably kind of unsure", "prior", "goal topic"},
		{"marker-heavy", "because therefore thus hence first second finally because due to implies", "prior", "goal topic"},
		{"single-word", "yes", "a long and detailed prior turn about the topic", "the topic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := s.Score(context.Background(), tt.turn, tt.prior, tt.goal)
			for _, m := range Metrics {
				v := snap.Value(m)
				if v < 0 || v > 1 {
					t.Errorf("%s out of bounds: %v", m, v)
				}
			}
		})
	}
}

func TestScore_Idempotent(t *testing.T) {
	s := NewScorer(nil, DefaultConfig())
	turn := "Raft elects a leader because a single coordinator simplifies log replication. Therefore followers only accept entries from the current term."
	prior := "How does Raft maintain a consistent log across replicas?"
	goal := "Discuss the Raft consensus protocol"

	first := s.Score(context.Background(), turn, prior, goal)
	second := s.Score(context.Background(), turn, prior, goal)
	if first != second {
		t.Errorf("snapshots differ: %+v vs %+v", first, second)
	}
}

func TestScore_CoherenceTracksOverlap(t *testing.T) {
	s := NewScorer(nil, DefaultConfig())
	prior := "Raft handles leader election through randomized timeouts"

	related := s.Score(context.Background(), "leader election timeouts prevent split votes in raft", prior, "raft")
	unrelated := s.Score(context.Background(), "my favorite recipe involves fresh basil tomato garlic", prior, "raft")

	if related.Coherence <= unrelated.Coherence {
		t.Errorf("related coherence %.2f should exceed unrelated %.2f", related.Coherence, unrelated.Coherence)
	}
}

func TestScore_TopicSimilarityTracksGoal(t *testing.T) {
	s := NewScorer(nil, DefaultConfig())
	goal := "Discuss the tradeoffs of microservice architectures"

	onTopic := s.Score(context.Background(), "microservice architectures involve tradeoffs between autonomy and operational cost", "prior", goal)
	offTopic := s.Score(context.Background(), "penguins huddle together to conserve warmth in winter", "prior", goal)

	if onTopic.TopicSimilarity <= offTopic.TopicSimilarity {
		t.Errorf("on-topic %.2f should exceed off-topic %.2f", onTopic.TopicSimilarity, offTopic.TopicSimilarity)
	}
}

func TestScore_UncertaintyTracksHedging(t *testing.T) {
	s := NewScorer(nil, DefaultConfig())

	hedged := s.Score(context.Background(), "maybe it works, perhaps not, i think it seems unclear, hard to say really", "prior", "goal")
	confident := s.Score(context.Background(), "the index lookup takes logarithmic time and the scan takes linear time", "prior", "goal")

	if hedged.Uncertainty <= confident.Uncertainty {
		t.Errorf("hedged %.2f should exceed confident %.2f", hedged.Uncertainty, confident.Uncertainty)
	}
}

func TestScore_DepthTracksMarkers(t *testing.T) {
	s := NewScorer(nil, DefaultConfig())

	reasoned := s.Score(context.Background(), "first, the cache misses because the key rotates; therefore latency rises, which means the pool saturates", "prior", "goal")
	flat := s.Score(context.Background(), "the cache misses sometimes and latency rises and the pool saturates", "prior", "goal")

	if reasoned.ReasoningDepth <= flat.ReasoningDepth {
		t.Errorf("reasoned %.2f should exceed flat %.2f", reasoned.ReasoningDepth, flat.ReasoningDepth)
	}
}

// stubEmbedder returns a fixed vector per distinct text.
type stubEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (e *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.vectors[text], nil
}

func TestScore_EmbedderCoherence(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{
		"turn a":  {1, 0, 0},
		"prior b": {1, 0, 0},
	}}
	s := NewScorer(emb, DefaultConfig())

	snap := s.Score(context.Background(), "turn a", "prior b", "goal")
	if snap.Coherence != 1.0 {
		t.Errorf("identical embeddings: got %.2f, want 1.0", snap.Coherence)
	}
}

func TestScore_EmbedderFailureFallsBackToLexical(t *testing.T) {
	emb := &stubEmbedder{err: errors.New("backend down")}
	s := NewScorer(emb, DefaultConfig())

	snap := s.Score(context.Background(), "leader election timeouts", "leader election timeouts", "goal")
	lexical := NewScorer(nil, DefaultConfig()).Score(context.Background(), "leader election timeouts", "leader election timeouts", "goal")
	if snap.Coherence != lexical.Coherence {
		t.Errorf("fallback coherence %.2f != lexical %.2f", snap.Coherence, lexical.Coherence)
	}
}
