package pages

import (
	"github.com/sirupsen/logrus"

	"github.com/themizzi/sessionsuite/internal/browser"
)

// Admin portal paths
const (
	LeaveListPath         = "/leave/viewLeaveList"
	EmployeeTimesheetPath = "/time/viewEmployeeTimesheet"
	EmployeeListPath      = "/pim/viewEmployeeList"
)

// AdminPage is the dashboard an administrator lands on.
type AdminPage struct {
	*Handle
	Dashboard browser.Selector
}

func NewAdminPage(session browser.Session, baseURL string) *AdminPage {
	return &AdminPage{
		Handle:    NewHandle(session, baseURL),
		Dashboard: browser.Heading("Dashboard"),
	}
}

// PIMPage is the employee directory.
type PIMPage struct {
	*Handle
}

func NewPIMPage(session browser.Session, baseURL string) *PIMPage {
	return &PIMPage{Handle: NewHandle(session, baseURL)}
}

// Navigate opens the employee list.
func (p *PIMPage) Navigate() error {
	return p.Goto(EmployeeListPath)
}

// LeavePage covers leave requests and timesheets.
type LeavePage struct {
	*Handle
	log logrus.FieldLogger
}

func NewLeavePage(session browser.Session, baseURL string, log logrus.FieldLogger) *LeavePage {
	return &LeavePage{Handle: NewHandle(session, baseURL), log: log}
}

// NavigateToLeavePage opens the leave list.
func (p *LeavePage) NavigateToLeavePage() error {
	return p.Goto(LeaveListPath)
}

// ApplyLeave opens the leave list to start a request.
func (p *LeavePage) ApplyLeave() error {
	if err := p.Goto(LeaveListPath); err != nil {
		return err
	}
	p.log.Info("Applying for leave...")
	return nil
}

// NavigateToTimesheet opens the employee timesheet view.
func (p *LeavePage) NavigateToTimesheet() error {
	return p.Goto(EmployeeTimesheetPath)
}
