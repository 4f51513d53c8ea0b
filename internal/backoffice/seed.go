package backoffice

var vendorStages = []string{"RFQ Issued", "Bids Received", "Under Evaluation", "Approved", "PO Issued"}

// SeedDocuments is the queue a fresh back office starts with.
func SeedDocuments() []Document {
	return []Document{
		{ID: "DOC-2025-0234", Name: "IT Infrastructure Upgrade Proposal", Type: "Procurement", SubmittedBy: "Ram Shrestha", Department: "IT", Date: "2025-02-28", Amount: "NPR 45,00,000", Status: StatusPending},
		{ID: "DOC-2025-0233", Name: "Staff Training Budget Approval", Type: "HR", SubmittedBy: "Sita Thapa", Department: "Human Resources", Date: "2025-02-27", Amount: "NPR 8,50,000", Status: StatusPending},
		{ID: "DOC-2025-0232", Name: "ATM Software Maintenance Contract", Type: "Vendor Contract", SubmittedBy: "Hari Gurung", Department: "Operations", Date: "2025-02-27", Amount: "NPR 12,00,000", Status: StatusPending},
		{ID: "DOC-2025-0231", Name: "Branch Renovation — Biratnagar", Type: "Capital Expenditure", SubmittedBy: "Priya Koirala", Department: "Admin", Date: "2025-02-26", Amount: "NPR 35,00,000", Status: StatusPending},
		{ID: "DOC-2025-0230", Name: "Customer Loan Application — Binod KC", Type: "Loan Application", SubmittedBy: "Binod K.C.", Department: "Credit", Date: "2025-02-26", Amount: "NPR 15,00,000", Status: StatusPending},
		{ID: "DOC-2025-0229", Name: "Annual Printing Supplies RFQ", Type: "Procurement", SubmittedBy: "Laxmi Bajracharya", Department: "Admin", Date: "2025-02-25", Amount: "NPR 3,20,000", Status: StatusPending},
	}
}

// SeedAudit is newest first.
func SeedAudit() []AuditEntry {
	return []AuditEntry{
		{ID: "AUD-001", Action: StatusApproved, Document: "Q1 Marketing Budget", ActedBy: ActedBy, Timestamp: "2025-02-28 09:12:34", Department: "Marketing"},
		{ID: "AUD-002", Action: StatusRejected, Document: "Lobby Furniture Purchase", ActedBy: ActedBy, Timestamp: "2025-02-27 15:44:21", Department: "Admin"},
		{ID: "AUD-003", Action: StatusApproved, Document: "New ATM Deployment — Pokhara", ActedBy: ActedBy, Timestamp: "2025-02-27 11:03:55", Department: "Operations"},
		{ID: "AUD-004", Action: StatusApproved, Document: "Staff Insurance Renewal", ActedBy: ActedBy, Timestamp: "2025-02-26 17:22:10", Department: "HR"},
	}
}

func SeedVendors() []Vendor {
	return []Vendor{
		{ID: "VND-001", Vendor: "NIC Nepal Pvt. Ltd.", Service: "Core Banking Upgrade", Amount: "NPR 1.2 Cr", Stage: 3, Stages: vendorStages},
		{ID: "VND-002", Vendor: "Yomari Inc.", Service: "Mobile App Revamp", Amount: "NPR 45 Lakh", Stage: 1, Stages: vendorStages},
		{ID: "VND-003", Vendor: "Agni Tech Solutions", Service: "ATM Maintenance 2025", Amount: "NPR 12 Lakh", Stage: 4, Stages: vendorStages},
		{ID: "VND-004", Vendor: "Smart Office Nepal", Service: "Office Stationery Supply", Amount: "NPR 3.2 Lakh", Stage: 0, Stages: vendorStages},
	}
}
