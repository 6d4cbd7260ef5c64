package assemble

import "testing"

func TestClassify_EqualNormalizedTypes(t *testing.T) {
	if got := Classify("VARCHAR(50)", "varchar(10)"); got != Compatible {
		t.Errorf("got %v, want Compatible", got)
	}
}

func TestClassify_SameCategory(t *testing.T) {
	if got := Classify("int", "bigint"); got != Compatible {
		t.Errorf("got %v, want Compatible", got)
	}
}

func TestClassify_NumericBooleanImplicit(t *testing.T) {
	if got := Classify("int", "bit"); got != ImplicitConversion {
		t.Errorf("got %v, want ImplicitConversion", got)
	}
}

func TestClassify_StringTemporalImplicit(t *testing.T) {
	if got := Classify("varchar", "datetime"); got != ImplicitConversion {
		t.Errorf("got %v, want ImplicitConversion", got)
	}
}

func TestClassify_StringNumericIncompatible(t *testing.T) {
	if got := Classify("varchar", "int"); got != Incompatible {
		t.Errorf("got %v, want Incompatible", got)
	}
}

func TestClassify_CrossCategoryOtherIncompatible(t *testing.T) {
	if got := Classify("uuid", "json"); got != Incompatible {
		t.Errorf("got %v, want Incompatible", got)
	}
}

func TestClassify_UnknownWhenEmpty(t *testing.T) {
	if got := Classify("", "int"); got != Unknown {
		t.Errorf("got %v, want Unknown", got)
	}
}
