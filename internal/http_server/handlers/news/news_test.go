package news

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"Hello World", "hello-world"},
		{"  Grand   Opening!!  ", "grand-opening"},
		{"Update #42: New Cars", "update-42-new-cars"},
		{"UPPERCASE", "uppercase"},
		{"---", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, slugify(tc.title), "title %q", tc.title)
	}
}
