package namematch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVariants(t *testing.T) {
	t.Run("middle initial forms are added", func(t *testing.T) {
		assert.Equal(t, []string{
			"Gary C. Peters",
			"Gary Peters",
			"Peters, Gary",
			"Peters",
			"Gary C Peters",
		}, Variants("Gary C. Peters"))
	})

	t.Run("last first input", func(t *testing.T) {
		assert.Equal(t, []string{"Peters, Gary", "Gary Peters", "Peters"}, Variants("Peters, Gary"))
	})

	t.Run("suffixes are not used as surnames", func(t *testing.T) {
		variants := Variants("John Smith Jr.")
		assert.Contains(t, variants, "Smith")
		assert.NotContains(t, variants, "Jr.")
	})

	t.Run("single token", func(t *testing.T) {
		assert.Equal(t, []string{"Cher"}, Variants("Cher"))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Nil(t, Variants("   "))
	})
}
