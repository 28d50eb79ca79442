package hex

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOrientation(t *testing.T) {
	for _, o := range Orientations {
		t.Run(o.String(), func(t *testing.T) {
			rotated := o
			for i := 0; i < 6; i++ {
				rotated = rotated.Next()
			}
			require.Equal(t, o, rotated, "six turns should be identity")
			require.Equal(t, o, o.Opposite().Opposite())
			require.Equal(t, o, o.Next().Prev())
			require.Equal(t, o, o.Prev().Next())
			require.Equal(t, o.Next().Next().Next(), o.Opposite())
		})
	}

	t.Run("port from right faces up-right", func(t *testing.T) {
		require.Equal(t, UpRight, Right.Next())
		require.Equal(t, DownRight, Right.Prev())
		require.Equal(t, Left, Right.Opposite())
	})

	t.Run("parse rejects out of range", func(t *testing.T) {
		_, err := ParseOrientation(6)
		require.Error(t, err)
		o, err := ParseOrientation(4)
		require.NoError(t, err)
		require.Equal(t, DownLeft, o)
	})
}
