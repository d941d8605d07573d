package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/iliyamo/immersive-venue-booking/internal/model"
)

func TestCartRemoveOwnership(t *testing.T) {
	guest := model.CartOwner{SessionID: "sess-a"}
	tests := []struct {
		name   string
		exists bool
		want   error
	}{
		{"line of another cart", true, ErrForbidden},
		{"line does not exist", false, ErrNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatal(err)
			}
			defer db.Close()

			mock.ExpectExec(`DELETE FROM cart_items WHERE id = \? AND session_id = \? AND user_id IS NULL`).
				WithArgs(5, "sess-a").
				WillReturnResult(sqlmock.NewResult(0, 0))
			rows := sqlmock.NewRows([]string{"1"})
			if tc.exists {
				rows.AddRow(1)
			}
			mock.ExpectQuery(`SELECT 1 FROM cart_items WHERE id = \?`).WithArgs(5).WillReturnRows(rows)

			if err := NewCartRepo(db).Remove(context.Background(), guest, 5); !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestCartClearByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	mock.ExpectExec(`DELETE FROM cart_items WHERE user_id = \?`).WithArgs(3).WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := NewCartRepo(db).Clear(context.Background(), model.CartOwner{UserID: 3, SessionID: "ignored"})
	if err != nil || n != 4 {
		t.Errorf("Clear = %d, %v", n, err)
	}
}
