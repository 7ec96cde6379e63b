package models

import "testing"

func TestRoleValid(t *testing.T) {
	for _, r := range AllRoles {
		if !r.Valid() {
			t.Errorf("role %q reported invalid", r)
		}
	}

	for _, r := range []Role{"", "admin", "OWNER", "SUPERUSER"} {
		if r.Valid() {
			t.Errorf("role %q reported valid", r)
		}
	}
}

func TestMaterialTypeValid(t *testing.T) {
	if !MaterialStudy.Valid() || !MaterialRecorded.Valid() {
		t.Error("known material types reported invalid")
	}
	if MaterialType("VIDEO").Valid() {
		t.Error("unknown material type reported valid")
	}
}
