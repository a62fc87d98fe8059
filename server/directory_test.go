package server

import (
	"testing"

	"go.uber.org/zap"
)

func TestDirectory(t *testing.T) {
	d := NewDirectory()
	log := zap.NewNop().Sugar()
	s1 := NewSession("b", newFakeConn("1"), newFakeConn("2"), DefaultConfig(), log)
	s2 := NewSession("a", newFakeConn("3"), newFakeConn("4"), DefaultConfig(), log)

	if err := d.Add(s1); err != nil {
		t.Fatal(err)
	}
	if err := d.Add(s2); err != nil {
		t.Fatal(err)
	}
	if err := d.Add(s1); err == nil {
		t.Fatal("duplicate id accepted")
	}
	if got, ok := d.Get("b"); !ok || got != s1 {
		t.Fatal("Get(b) did not return s1")
	}

	list := d.List()
	if len(list) != 2 || list[0].ID != "a" || list[1].ID != "b" {
		t.Fatalf("List = %+v", list)
	}
	if list[0].Phase != "pairing" || list[0].Left != "3" || list[0].Right != "4" {
		t.Fatalf("info = %+v", list[0])
	}

	if !d.Remove("b") || d.Remove("b") {
		t.Fatal("Remove(b) should succeed exactly once")
	}
	if _, ok := d.Get("b"); ok || d.Len() != 1 {
		t.Fatal("b still registered")
	}
}
