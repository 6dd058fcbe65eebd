package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTags(t *testing.T) {
	tags := Tags(map[string]string{"job": "jira", "api": "issues"})
	assert.Equal(t, []string{"api:issues", "job:jira"}, tags)
	assert.Empty(t, Tags(nil))
}

func TestSplitTag(t *testing.T) {
	k, v := SplitTag("status:500")
	assert.Equal(t, "status", k)
	assert.Equal(t, "500", v)

	k, v = SplitTag("flag")
	assert.Equal(t, "flag", k)
	assert.Equal(t, "", v)
}
