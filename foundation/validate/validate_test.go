package validate_test

import (
	"testing"

	"github.com/ardanlabs/simwallet/foundation/validate"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type sendForm struct {
	Sender    string `json:"sender" validate:"required"`
	Recipient string `json:"recipient" validate:"required"`
	Amount    string `json:"amount" validate:"required"`
}

func TestCheck(t *testing.T) {
	t.Log("Given the need to validate request models.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen handling a model with missing fields.", testID)
		{
			err := validate.Check(sendForm{Sender: "alice"})
			if err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould get an error for the missing fields.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould get an error for the missing fields.", success, testID)

			fields := validate.GetFieldErrors(err).Fields()
			if _, exists := fields["recipient"]; !exists {
				t.Fatalf("\t%s\tTest %d:\tShould report the field by its json name: %v", failed, testID, fields)
			}
			if _, exists := fields["amount"]; !exists {
				t.Fatalf("\t%s\tTest %d:\tShould report the amount field: %v", failed, testID, fields)
			}
			if _, exists := fields["sender"]; exists {
				t.Fatalf("\t%s\tTest %d:\tShould not report the sender field: %v", failed, testID, fields)
			}
			t.Logf("\t%s\tTest %d:\tShould report the fields by their json names.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen handling a complete model.", testID)
		{
			if err := validate.Check(sendForm{Sender: "a", Recipient: "b", Amount: "1"}); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould pass validation: %s", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould pass validation.", success, testID)
		}
	}
}
