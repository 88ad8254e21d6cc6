package progress_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NamanBalaji/uploadsim/internal/progress"
)

func TestUniformStaysInEnvelope(t *testing.T) {
	u := progress.NewUniform(7, 0, 0.12)

	for range 10000 {
		v := u.Next()
		require.GreaterOrEqual(t, v, 0.0)
		require.Less(t, v, 0.12)
	}
}

func TestUniformNormalizesBounds(t *testing.T) {
	u := progress.NewUniform(1, 0.2, -0.1)

	for range 1000 {
		v := u.Next()
		require.GreaterOrEqual(t, v, 0.0)
		require.Less(t, v, 0.2)
	}
}

func TestUniformIsDeterministicPerSeed(t *testing.T) {
	a := progress.NewUniform(42, 0, 0.12)
	b := progress.NewUniform(42, 0, 0.12)
	c := progress.NewUniform(43, 0, 0.12)

	same := true
	differs := false

	for range 50 {
		av, bv, cv := a.Next(), b.Next(), c.Next()
		same = same && av == bv
		differs = differs || av != cv
	}

	assert.True(t, same, "equal seeds should yield equal streams")
	assert.True(t, differs, "different seeds should yield different streams")
}

func TestFactoryProducesIndependentSources(t *testing.T) {
	f := progress.NewFactory(100, 0, 0.12)
	s1, s2 := f(), f()

	differs := false
	for range 20 {
		if s1.Next() != s2.Next() {
			differs = true
		}
	}
	assert.True(t, differs)

	// same base seed, same sequence of sources
	g := progress.NewFactory(100, 0, 0.12)
	assert.Equal(t, progress.NewFactory(100, 0, 0.12)().Next(), g().Next())
}

func TestSequence(t *testing.T) {
	s := progress.NewSequence(0.5, 0.4, 0.3)
	assert.Equal(t, 0.5, s.Next())
	assert.Equal(t, 0.4, s.Next())
	assert.Equal(t, 0.3, s.Next())
	assert.Equal(t, 0.3, s.Next())

	assert.Equal(t, 0.0, progress.NewSequence().Next())
}
