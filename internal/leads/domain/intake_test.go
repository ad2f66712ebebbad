package domain

import (
	"reflect"
	"testing"
)

func strPtr(s string) *string { return &s }

func completeIntake() IntakeFields {
	line := LineRetail
	pay := PaymentCard
	return IntakeFields{
		Company:             strPtr("Bakery Bros"),
		Phone:               strPtr("+31612345678"),
		AddressToUse:        strPtr("Main St 1"),
		BusinessDescription: strPtr("Neighbourhood bakery"),
		ServiceOutcome:      strPtr("Online ordering"),
		AdminEaseNotes:      strPtr("Owner edits menu weekly"),
		LineOfBusiness:      &line,
		PaymentHandling:     &pay,
	}
}

func TestMissingIntakeFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*IntakeFields)
		want   []string
	}{
		{
			name:   "complete",
			mutate: func(*IntakeFields) {},
			want:   []string{},
		},
		{
			name:   "empty lead lists every unconditional field in order",
			mutate: func(in *IntakeFields) { *in = IntakeFields{} },
			want: []string{
				FieldCompany, FieldAddressToUse, FieldPhone, FieldBusinessDescription,
				FieldServiceOutcome, FieldAdminEaseNotes, FieldLineOfBusiness, FieldPaymentHandling,
			},
		},
		{
			name: "whitespace counts as missing",
			mutate: func(in *IntakeFields) {
				in.Phone = strPtr("   ")
				in.AdminEaseNotes = strPtr("")
			},
			want: []string{FieldPhone, FieldAdminEaseNotes},
		},
		{
			name:   "domain required only when flagged",
			mutate: func(in *IntakeFields) { in.HasDomain = true },
			want:   []string{FieldDomain},
		},
		{
			name: "domain satisfied",
			mutate: func(in *IntakeFields) {
				in.HasDomain = true
				in.Domain = strPtr("bakerybros.nl")
			},
			want: []string{},
		},
		{
			name:   "logo required only when flagged",
			mutate: func(in *IntakeFields) { in.HasLogo = true },
			want:   []string{FieldLogo},
		},
		{
			name: "unflagged domain and logo are not required",
			mutate: func(in *IntakeFields) {
				in.Domain = nil
				in.LogoURL = nil
			},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := completeIntake()
			tt.mutate(&in)
			got := MissingIntakeFields(in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

// Scenario B: a lead missing only paymentHandling reports exactly that field.
func TestMissingIntakeFieldsSingleGap(t *testing.T) {
	in := completeIntake()
	in.PaymentHandling = nil

	got := MissingIntakeFields(in)
	if len(got) != 1 || got[0] != FieldPaymentHandling {
		t.Fatalf("expected [paymentHandling], got %v", got)
	}
}
