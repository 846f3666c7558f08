package controllers

import (
	"net/http"

	"fintrack/models"
	"fintrack/services"
	"fintrack/utils"

	"github.com/beevik/etree"
	"github.com/gorilla/mux"
)

// ReportController отдает месячные отчеты в JSON или XML
type ReportController struct {
	reports *services.ReportService
}

// NewReportController создает новый экземпляр ReportController
func NewReportController(reports *services.ReportService) *ReportController {
	return &ReportController{reports: reports}
}

// GetReport возвращает отчет за /reports/{year}/{month}; ?format=xml отдает XML
func (c *ReportController) GetReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	year, month, err := services.ParseReportPeriod(vars["year"], vars["month"])
	if err != nil {
		respondError(w, err)
		return
	}

	report, err := c.reports.GetReport(r.Context(), userID, year, month)
	if err != nil {
		respondError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "xml" {
		writeReportXML(w, report)
		return
	}

	respond(w, http.StatusOK, "Месячный отчет", report)
}

// reportDocument строит XML-представление отчета
func reportDocument(report *models.MonthlyReport) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("report")
	root.CreateAttr("month", report.Month)

	root.CreateElement("total_income").SetText(report.TotalIncome.StringFixed(2))
	root.CreateElement("total_expenses").SetText(report.TotalExpenses.StringFixed(2))
	root.CreateElement("net_savings").SetText(report.NetSavings.StringFixed(2))

	addDetails(root.CreateElement("income_details"), report.IncomeDetails)
	addDetails(root.CreateElement("expense_details"), report.ExpenseDetails)

	trends := root.CreateElement("trends")
	trends.CreateElement("previous_month_total_income").SetText(report.Trends.PreviousMonthTotalIncome.StringFixed(2))
	trends.CreateElement("previous_month_total_expense").SetText(report.Trends.PreviousMonthTotalExpense.StringFixed(2))
	trends.CreateElement("income_trend").SetText(report.Trends.IncomeTrend)
	trends.CreateElement("expense_trend").SetText(report.Trends.ExpenseTrend)

	doc.Indent(2)
	return doc
}

func addDetails(parent *etree.Element, details []models.CategoryAmount) {
	for _, d := range details {
		item := parent.CreateElement("item")
		item.CreateAttr("category", d.Category)
		item.CreateAttr("amount", d.Amount.StringFixed(2))
	}
}

func writeReportXML(w http.ResponseWriter, report *models.MonthlyReport) {
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := reportDocument(report).WriteTo(w); err != nil {
		utils.LogError("Ошибка записи XML отчета: %v", err)
	}
}

// RegisterRoutes регистрирует маршруты контроллера
func (c *ReportController) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/reports/{year}/{month}", c.GetReport).Methods("GET")
}
