package firebase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDownloadURL(t *testing.T) {
	got := DownloadURL("community.appspot.com", "images/abc/photo 1.png", "tok+en")
	assert.Equal(t,
		"https://firebasestorage.googleapis.com/v0/b/community.appspot.com/o/images%2Fabc%2Fphoto%201.png?alt=media&token=tok%2Ben",
		got)
}
