package steps

import (
	"context"
	"errors"
	"fmt"

	"github.com/cucumber/godog"
)

func registerLedgerSteps(ctx *godog.ScenarioContext) {
	ctx.Step(`^the "([^"]*)" worksheet should have (\d+) data rows?$`, theWorksheetShouldHaveDataRows)
	ctx.Step(`^the "([^"]*)" worksheet should not exist$`, theWorksheetShouldNotExist)
	ctx.Step(`^the spreadsheet rejects writes$`, theSpreadsheetRejectsWrites)
	ctx.Step(`^the spreadsheet is unreachable$`, theSpreadsheetIsUnreachable)
}

func theWorksheetShouldHaveDataRows(ctx context.Context, table string, want int) error {
	tc := GetTestContext(ctx)
	rows, err := tc.repo.ReadTable(ctx, table)
	if err != nil {
		return fmt.Errorf("read %s: %w", table, err)
	}
	if got := len(rows) - 1; got != want {
		return fmt.Errorf("worksheet %s has %d data rows, want %d", table, got, want)
	}
	return nil
}

func theWorksheetShouldNotExist(ctx context.Context, table string) error {
	tc := GetTestContext(ctx)
	if _, err := tc.repo.ReadTable(ctx, table); err == nil {
		return fmt.Errorf("worksheet %s exists", table)
	}
	return nil
}

func theSpreadsheetRejectsWrites(ctx context.Context) error {
	GetTestContext(ctx).repo.FailWrites(errors.New("quota exceeded"))
	return nil
}

func theSpreadsheetIsUnreachable(ctx context.Context) error {
	tc := GetTestContext(ctx)
	tc.repo.FailReads(errors.New("connection refused"))
	tc.repo.FailWrites(errors.New("connection refused"))
	return nil
}
