// export-period writes one month of gallon transactions to an xlsx workbook and,
// when EXPORT_BUCKET is set, uploads it to GCS.
//
// Usage:
//
//	go run ./cmd/export-period -month 2024-03 [-employee-id TI] [-out report.xlsx]
//
// -month defaults to the previous month in APP_TIMEZONE.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mmdatafocus/gallon_backend/config"
	"github.com/mmdatafocus/gallon_backend/models"
	"github.com/mmdatafocus/gallon_backend/utils"
	"github.com/sirupsen/logrus"
)

func main() {
	month := flag.String("month", "", "period key YYYY-MM (default: previous month)")
	employeeId := flag.String("employee-id", "", "optional external id substring filter")
	out := flag.String("out", "", "local output file (default: gallon-transactions-<month>.xlsx)")
	flag.Parse()

	period := strings.TrimSpace(*month)
	if period == "" {
		period = previousPeriod(time.Now(), config.Location())
	}
	if *out == "" {
		*out = "gallon-transactions-" + period + ".xlsx"
	}

	ctx := context.Background()
	logger := config.GetLogger()

	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}

	data, err := models.ExportTransactions(ctx, models.TransactionFilter{Month: period, EmployeeId: *employeeId})
	if err != nil {
		fmt.Fprintf(os.Stderr, "export %s: %v\n", period, err)
		os.Exit(1)
	}

	if err := os.WriteFile(*out, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", *out, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s (%d bytes)\n", *out, len(data))

	bucket := config.ExportBucket()
	if bucket == "" {
		return
	}
	object := "gallon-exports/" + period + "/" + *out
	if err := utils.UploadBytesToGCS(ctx, bucket, object, data, utils.XlsxContentType); err != nil {
		config.LogError(logger, "export-period", "main", "UploadBytesToGCS", logrus.Fields{"bucket": bucket, "object": object}, err)
		fmt.Fprintf(os.Stderr, "upload gs://%s/%s: %v\n", bucket, object, err)
		os.Exit(1)
	}
	fmt.Printf("Uploaded gs://%s/%s\n", bucket, object)
}

func previousPeriod(now time.Time, loc *time.Location) string {
	local := now.In(loc)
	firstOfMonth := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	return utils.PeriodKey(firstOfMonth.AddDate(0, 0, -1), loc)
}
