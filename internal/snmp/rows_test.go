// internal/snmp/rows_test.go
package snmp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReadRows(t *testing.T) {
	in := `# fw1 snapshot
1,CHECK_8.8.8.8,1,0,19.966,0.033,11520832,11517199,0.000,root,285,291,576
2, CHECK_1.1.1.2,2,1,16.610,0.079,2672092,2591440,3.333,root,281,279,560,wan2
`
	got, err := ReadRows(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadRows error: %v", err)
	}
	want := [][]string{
		{"1", "CHECK_8.8.8.8", "1", "0", "19.966", "0.033", "11520832", "11517199", "0.000", "root", "285", "291", "576"},
		{"2", "CHECK_1.1.1.2", "2", "1", "16.610", "0.079", "2672092", "2591440", "3.333", "root", "281", "279", "560", "wan2"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadRows mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteRowsReadBack(t *testing.T) {
	rows := [][]string{{"1", "CHECK, quoted", "1"}, {"2", "", "3"}}
	var buf bytes.Buffer
	if err := WriteRows(&buf, rows); err != nil {
		t.Fatalf("WriteRows error: %v", err)
	}
	got, err := ReadRows(&buf)
	if err != nil {
		t.Fatalf("ReadRows error: %v", err)
	}
	if diff := cmp.Diff(rows, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestReadRowsMalformed(t *testing.T) {
	if _, err := ReadRows(strings.NewReader("1,\"unterminated\n")); err == nil {
		t.Error("expected error for unterminated quote")
	}
}
