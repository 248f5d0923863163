package profile_test

import (
	"reflect"
	"testing"

	"github.com/rumbo-ai/rumbo/pkg/profile"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"Matematicas", "matematicas"},
		{"  Quito  ", "quito"},
		{"EN LINEA", "en linea"},
		{"   ", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := profile.Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestClone_DeepCopy(t *testing.T) {
	t.Parallel()

	orig := &profile.UserProfile{
		Name: "Lenin",
		Preferences: profile.Preferences{
			City:               "quito",
			IsPublicUniversity: boolPtr(true),
		},
		Interests:      []string{"robotica"},
		InterestVector: []float32{0.1, 0.2},
	}

	cp := orig.Clone()
	cp.Name = "Otra"
	cp.Interests[0] = "cambiado"
	cp.InterestVector[0] = 9
	*cp.Preferences.IsPublicUniversity = false

	if orig.Name != "Lenin" {
		t.Errorf("Name mutated through clone: %q", orig.Name)
	}
	if orig.Interests[0] != "robotica" {
		t.Errorf("Interests mutated through clone: %v", orig.Interests)
	}
	if orig.InterestVector[0] != 0.1 {
		t.Errorf("InterestVector mutated through clone: %v", orig.InterestVector)
	}
	if !*orig.Preferences.IsPublicUniversity {
		t.Error("IsPublicUniversity mutated through clone")
	}
}

func TestClone_Nil(t *testing.T) {
	t.Parallel()

	var p *profile.UserProfile
	cp := p.Clone()
	if cp == nil {
		t.Fatal("Clone of nil profile returned nil")
	}
	if cp.Name != "" || len(cp.Interests) != 0 {
		t.Errorf("Clone of nil profile is not empty: %+v", cp)
	}
}

func TestMerge_ScalarOverwrite(t *testing.T) {
	t.Parallel()

	current := &profile.UserProfile{
		Name:        "Lenin",
		Preferences: profile.Preferences{City: "quito"},
	}
	updates := profile.FieldUpdateSet{
		City:     strPtr("Guayaquil"),
		Modality: strPtr("En Linea"),
	}

	got := profile.Merge(current, updates)

	if got.Preferences.City != "guayaquil" {
		t.Errorf("City = %q, want %q", got.Preferences.City, "guayaquil")
	}
	if got.Preferences.Modality != "en linea" {
		t.Errorf("Modality = %q, want %q", got.Preferences.Modality, "en linea")
	}
	if got.Name != "Lenin" {
		t.Errorf("Name = %q, want unchanged %q", got.Name, "Lenin")
	}
}

func TestMerge_OmissionRetains(t *testing.T) {
	t.Parallel()

	current := &profile.UserProfile{
		Name: "Lenin",
		Preferences: profile.Preferences{
			City:               "quito",
			IsPublicUniversity: boolPtr(true),
		},
		Interests: []string{"matematicas"},
	}

	got := profile.Merge(current, profile.FieldUpdateSet{})

	if !reflect.DeepEqual(got, current) {
		t.Errorf("empty update changed the profile:\ngot  %+v\nwant %+v", got, current)
	}
}

func TestMerge_BlankScalarIgnored(t *testing.T) {
	t.Parallel()

	current := &profile.UserProfile{
		Name:        "Lenin",
		Preferences: profile.Preferences{City: "quito"},
	}
	updates := profile.FieldUpdateSet{
		Name: strPtr("   "),
		City: strPtr(""),
	}

	got := profile.Merge(current, updates)

	if got.Name != "Lenin" {
		t.Errorf("blank name update cleared the name: %q", got.Name)
	}
	if got.Preferences.City != "quito" {
		t.Errorf("empty city update cleared the city: %q", got.Preferences.City)
	}
}

func TestMerge_NameKeepsCasing(t *testing.T) {
	t.Parallel()

	got := profile.Merge(nil, profile.FieldUpdateSet{Name: strPtr("  Lenin Falconi ")})
	if got.Name != "Lenin Falconi" {
		t.Errorf("Name = %q, want %q", got.Name, "Lenin Falconi")
	}
}

func TestMerge_ExplicitFalseOverridesTrue(t *testing.T) {
	t.Parallel()

	current := &profile.UserProfile{
		Preferences: profile.Preferences{IsPublicUniversity: boolPtr(true)},
	}
	got := profile.Merge(current, profile.FieldUpdateSet{IsPublicUniversity: boolPtr(false)})

	if got.Preferences.IsPublicUniversity == nil || *got.Preferences.IsPublicUniversity {
		t.Error("explicit false did not override stored true")
	}
}

func TestMerge_ListUnion(t *testing.T) {
	t.Parallel()

	current := &profile.UserProfile{
		Interests: []string{"matematicas", "fisica"},
	}
	updates := profile.FieldUpdateSet{
		Interests: []string{"Robotica", "MATEMATICAS", "  ", "fisica"},
	}

	got := profile.Merge(current, updates)

	want := []string{"matematicas", "fisica", "robotica"}
	if !reflect.DeepEqual(got.Interests, want) {
		t.Errorf("Interests = %v, want %v", got.Interests, want)
	}
}

func TestMerge_DoesNotMutateCurrent(t *testing.T) {
	t.Parallel()

	current := &profile.UserProfile{Interests: []string{"matematicas"}}
	_ = profile.Merge(current, profile.FieldUpdateSet{Interests: []string{"robotica"}})

	if len(current.Interests) != 1 {
		t.Errorf("Merge mutated its input: %v", current.Interests)
	}
}

func TestMerge_NilCurrent(t *testing.T) {
	t.Parallel()

	got := profile.Merge(nil, profile.FieldUpdateSet{
		Name:      strPtr("Maria"),
		Interests: []string{"quimica"},
	})

	if got.Name != "Maria" {
		t.Errorf("Name = %q, want %q", got.Name, "Maria")
	}
	if !reflect.DeepEqual(got.Interests, []string{"quimica"}) {
		t.Errorf("Interests = %v, want [quimica]", got.Interests)
	}
}

func TestMerge_Idempotent(t *testing.T) {
	t.Parallel()

	updates := profile.FieldUpdateSet{
		Name:      strPtr("Lenin"),
		City:      strPtr("Quito"),
		Interests: []string{"robotica", "matematicas"},
	}

	once := profile.Merge(nil, updates)
	twice := profile.Merge(once, updates)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("applying the same update twice changed the profile:\nonce  %+v\ntwice %+v", once, twice)
	}
}

func TestFieldUpdateSet_IsEmpty(t *testing.T) {
	t.Parallel()

	if !(profile.FieldUpdateSet{}).IsEmpty() {
		t.Error("zero FieldUpdateSet is not empty")
	}
	if !(profile.FieldUpdateSet{HasIntentSignal: true}).IsEmpty() {
		t.Error("intent signal alone should not make the set non-empty")
	}
	if (profile.FieldUpdateSet{Name: strPtr("x")}).IsEmpty() {
		t.Error("set with a name is reported empty")
	}
	if (profile.FieldUpdateSet{WeakSubjects: []string{"fisica"}}).IsEmpty() {
		t.Error("set with a weak subject is reported empty")
	}
}
