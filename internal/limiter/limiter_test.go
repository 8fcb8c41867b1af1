package limiter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
		errMsg  string
	}{
		{name: "valid limit only", cfg: Config{Limit: 10}},
		{name: "valid offset only", cfg: Config{Offset: 5}},
		{name: "valid limit and offset", cfg: Config{Limit: 10, Offset: 5}},
		{name: "valid tail only", cfg: Config{Tail: 10}},
		{name: "tail ignores offset (valid)", cfg: Config{Tail: 10, Offset: 5}},
		{name: "limit and tail mutually exclusive", cfg: Config{Limit: 10, Tail: 5}, wantErr: true, errMsg: "mutually exclusive"},
		{name: "negative limit invalid", cfg: Config{Limit: -1}, wantErr: true, errMsg: "non-negative"},
		{name: "negative offset invalid", cfg: Config{Offset: -1}, wantErr: true, errMsg: "non-negative"},
		{name: "negative tail invalid", cfg: Config{Tail: -3}, wantErr: true, errMsg: "--tail"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConfigIsActive(t *testing.T) {
	assert.False(t, Config{}.IsActive())
	assert.True(t, Config{Limit: 1}.IsActive())
	assert.True(t, Config{Offset: 1}.IsActive())
	assert.True(t, Config{Tail: 1}.IsActive())
}

func TestApply(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	tests := []struct {
		name string
		cfg  Config
		want []int
	}{
		{"inactive", Config{}, items},
		{"limit", Config{Limit: 3}, []int{0, 1, 2}},
		{"offset", Config{Offset: 7}, []int{7, 8, 9}},
		{"offset and limit", Config{Offset: 2, Limit: 2}, []int{2, 3}},
		{"limit past end", Config{Offset: 8, Limit: 5}, []int{8, 9}},
		{"offset past end", Config{Offset: 20}, []int{}},
		{"tail", Config{Tail: 2}, []int{8, 9}},
		{"tail larger than data", Config{Tail: 20}, items},
		{"tail ignores offset", Config{Tail: 2, Offset: 3}, []int{8, 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Apply(tt.cfg, items))
		})
	}
}

func TestApplyRecords(t *testing.T) {
	records := []map[string]any{{"id": 1}, {"id": 2}, {"id": 3}}
	got := Apply(Config{Offset: 1, Limit: 1}, records)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0]["id"])
	assert.Empty(t, Apply(Config{Limit: 5}, []map[string]any(nil)))
}

func TestBounds(t *testing.T) {
	start, end := Config{Offset: 3, Limit: 4}.Bounds(5)
	assert.Equal(t, 3, start)
	assert.Equal(t, 5, end)

	start, end = Config{Tail: 2}.Bounds(-1)
	assert.Equal(t, 0, start)
	assert.Equal(t, 0, end)
}

func TestPager(t *testing.T) {
	p := NewPager([]string{"a", "b", "c", "d", "e"}, 2)
	assert.Equal(t, 5, p.Remaining())
	assert.Equal(t, []string{"a", "b"}, p.Next())
	assert.Equal(t, []string{"c", "d"}, p.Next())
	assert.False(t, p.Done())
	assert.Equal(t, []string{"e"}, p.Next())
	assert.True(t, p.Done())
	assert.Nil(t, p.Next())
	assert.Equal(t, 0, p.Remaining())
}

func TestPagerWithoutSize(t *testing.T) {
	p := NewPager([]int{1, 2, 3}, 0)
	assert.Equal(t, []int{1, 2, 3}, p.Next())
	assert.True(t, p.Done())

	empty := NewPager([]int{}, 0)
	assert.Nil(t, empty.Next())
	assert.True(t, empty.Done())
}
