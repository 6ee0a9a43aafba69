package residents

import "github.com/EmpoweredVote/barangay-admin/internal/store"

var (
	Genders        = []string{"male", "female", "other"}
	CivilStatuses  = []string{"single", "married", "widowed", "separated", "divorced"}
	Statuses       = []string{"active", "inactive", "deceased", "moved"}
	defaultStatus  = "active"
	requiredFields = []string{"firstName", "lastName", "dateOfBirth", "gender", "address"}
)

// Resident is a registered inhabitant of the barangay.
type Resident struct {
	store.Meta
	FirstName   string `json:"firstName"`
	MiddleName  string `json:"middleName,omitempty"`
	LastName    string `json:"lastName"`
	Suffix      string `json:"suffix,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address"`
	Purok       string `json:"purok,omitempty"`
	DateOfBirth string `json:"dateOfBirth"`
	Gender      string `json:"gender"`
	CivilStatus string `json:"civilStatus,omitempty"`
	Occupation  string `json:"occupation,omitempty"`
	VoterStatus bool   `json:"voterStatus"`
	Status      string `json:"status"`
}

func (r *Resident) FullName() string {
	name := r.FirstName
	if r.MiddleName != "" {
		name += " " + r.MiddleName
	}
	name += " " + r.LastName
	if r.Suffix != "" {
		name += " " + r.Suffix
	}
	return name
}

// String-valued fields a client may set.
var stringFields = []string{
	"firstName", "middleName", "lastName", "suffix", "email", "phone", "address",
	"purok", "dateOfBirth", "gender", "civilStatus", "occupation", "status",
}
