package checksum

import "testing"

func TestChanged(t *testing.T) {
	data := []byte("tags: []\n")
	sum := Sum(data)
	if len(sum) != 64 {
		t.Fatalf("sum length = %d, want 64", len(sum))
	}
	if Changed(sum, data) {
		t.Error("identical data reported as changed")
	}
	if !Changed(sum, []byte("tags: [x]\n")) {
		t.Error("different data reported as unchanged")
	}
	if !Changed("", data) {
		t.Error("empty sum must count as changed")
	}
}
