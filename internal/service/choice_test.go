package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeChoiceAnswerEquivalentForms(t *testing.T) {
	options := []string{"Paris", "London", "Rome"}

	// every representation of selecting B and C collapses to "BC"
	forms := []string{
		"B,C",
		"b|c",
		"C,B",
		"B;C",
		"b，c",
		"B、C",
		"B/C",
		"London,Rome",
		"london\nrome",
		"BC",
	}

	for _, form := range forms {
		got, ok := NormalizeChoiceAnswer(form, options)
		require.True(t, ok, "form %q", form)
		require.Equal(t, "BC", got, "form %q", form)
	}
}

func TestNormalizeChoiceAnswerRejectsInvalidLabel(t *testing.T) {
	options := []string{"Paris", "London", "Rome"}

	_, ok := NormalizeChoiceAnswer("D", options)
	require.False(t, ok)
}

func TestNormalizeChoiceAnswerEmptyInput(t *testing.T) {
	_, ok := NormalizeChoiceAnswer("", []string{"Paris"})
	require.False(t, ok)

	_, ok = NormalizeChoiceAnswer("   ", []string{"Paris"})
	require.False(t, ok)
}

func TestNormalizeChoiceAnswerMatchesOptionText(t *testing.T) {
	options := []string{"Paris", "London", "Rome"}

	got, ok := NormalizeChoiceAnswer("Paris", options)
	require.True(t, ok)
	require.Equal(t, "A", got)

	got, ok = NormalizeChoiceAnswer("PARIS", options)
	require.True(t, ok)
	require.Equal(t, "A", got)
}

func TestNormalizeChoiceAnswerStripsLabelPrefix(t *testing.T) {
	options := []string{"A. Paris", "B) London", "C、Rome"}

	got, ok := NormalizeChoiceAnswer("Paris", options)
	require.True(t, ok)
	require.Equal(t, "A", got)

	got, ok = NormalizeChoiceAnswer("london", options)
	require.True(t, ok)
	require.Equal(t, "B", got)
}

func TestNormalizeChoiceAnswerDeduplicates(t *testing.T) {
	options := []string{"Paris", "London", "Rome"}

	got, ok := NormalizeChoiceAnswer("B,B,London", options)
	require.True(t, ok)
	require.Equal(t, "B", got)
}

func TestNormalizeChoiceAnswerUnknownOptionCount(t *testing.T) {
	// without options the full alphabet is a valid label set
	got, ok := NormalizeChoiceAnswer("Z", nil)
	require.True(t, ok)
	require.Equal(t, "Z", got)
}

func TestNormalizeChoiceAnswerMixedSequenceWithInvalidLetterRejected(t *testing.T) {
	options := []string{"Paris", "London", "Rome"}

	// "BD" contains D which is out of range for three options
	_, ok := NormalizeChoiceAnswer("BD", options)
	require.False(t, ok)
}

func TestNormalizeChoiceAnswerDeterministic(t *testing.T) {
	options := []string{"Paris", "London", "Rome"}
	first, ok := NormalizeChoiceAnswer("C,B", options)
	require.True(t, ok)
	for i := 0; i < 100; i++ {
		again, ok := NormalizeChoiceAnswer("C,B", options)
		require.True(t, ok)
		require.Equal(t, first, again)
	}
}
