package core

type Employee struct {
	ID         string `json:"id"`
	EmployeeNo string `json:"employeeNo"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
}

func (e Employee) FullName() string {
	switch {
	case e.FirstName == "":
		return e.LastName
	case e.LastName == "":
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}
