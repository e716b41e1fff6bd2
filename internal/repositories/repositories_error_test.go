package repositories

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/desertthunder/netdecker/internal/models"
	"github.com/desertthunder/netdecker/internal/shared"
)

var errDB = errors.New("database is locked")

func newMock(t *testing.T) (sqlmock.Sqlmock, *DecklistRepository, *CardRepository) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		db.Close()
	})
	return mock, NewDecklistRepository(db), NewCardRepository(db)
}

func TestCardRepositoryErrors(t *testing.T) {
	t.Run("Get", func(t *testing.T) {
		t.Run("QueryError", func(t *testing.T) {
			mock, _, cards := newMock(t)
			mock.ExpectQuery("SELECT .* FROM proxy_cards WHERE name").WithArgs("Bolt").WillReturnError(errDB)

			_, err := cards.Get("Bolt")
			if !errors.Is(err, errDB) {
				t.Errorf("expected wrapped database error, got %v", err)
			}
			if errors.Is(err, shared.ErrCardNotFound) {
				t.Error("database failure must not look like not found")
			}
		})
	})

	t.Run("List", func(t *testing.T) {
		t.Run("QueryError", func(t *testing.T) {
			mock, _, cards := newMock(t)
			mock.ExpectQuery("SELECT .* FROM proxy_cards ORDER BY name").WillReturnError(errDB)

			if _, err := cards.List(); !errors.Is(err, errDB) {
				t.Errorf("expected wrapped database error, got %v", err)
			}
		})

		t.Run("RowError", func(t *testing.T) {
			mock, _, cards := newMock(t)
			rows := sqlmock.NewRows([]string{"id", "name", "quantity_owned", "quantity_available", "created_at", "updated_at"}).
				AddRow(1, "Bolt", 4, 4, nil, nil).
				RowError(0, errDB)
			mock.ExpectQuery("SELECT .* FROM proxy_cards ORDER BY name").WillReturnRows(rows)

			if _, err := cards.List(); err == nil {
				t.Error("expected row error")
			}
		})
	})

	t.Run("Upsert", func(t *testing.T) {
		mock, _, cards := newMock(t)
		mock.ExpectExec("INSERT INTO proxy_cards").WillReturnError(errDB)

		if err := cards.Upsert("Bolt", 4); !errors.Is(err, errDB) {
			t.Errorf("expected wrapped database error, got %v", err)
		}
	})

	t.Run("Save", func(t *testing.T) {
		t.Run("RowsAffectedError", func(t *testing.T) {
			mock, _, cards := newMock(t)
			mock.ExpectExec("UPDATE proxy_cards").WillReturnResult(sqlmock.NewErrorResult(errDB))

			card := &models.Card{Name: "Bolt", QuantityOwned: 4, QuantityAvailable: 2}
			if err := cards.Save(card); !errors.Is(err, errDB) {
				t.Errorf("expected rows affected error, got %v", err)
			}
		})
	})
}

func TestDecklistRepositoryErrors(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		t.Run("SequenceError", func(t *testing.T) {
			mock, decks, _ := newMock(t)
			mock.ExpectBegin()
			mock.ExpectExec("UPDATE decklists_sequence").WillReturnError(errDB)
			mock.ExpectRollback()

			deck := &models.Decklist{Name: "Burn", Format: "Modern", URL: "https://www.moxfield.com/decks/burn"}
			if err := decks.Create(deck); !errors.Is(err, errDB) {
				t.Errorf("expected wrapped database error, got %v", err)
			}
			if deck.ID != "" {
				t.Error("ID must stay empty when the insert fails")
			}
		})

		t.Run("InsertError", func(t *testing.T) {
			mock, decks, _ := newMock(t)
			mock.ExpectBegin()
			mock.ExpectExec("UPDATE decklists_sequence").WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectQuery("SELECT value FROM decklists_sequence").
				WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(7))
			mock.ExpectExec("INSERT INTO decklists").WillReturnError(errDB)
			mock.ExpectRollback()

			deck := &models.Decklist{Name: "Burn", Format: "Modern", URL: "https://www.moxfield.com/decks/burn"}
			if err := decks.Create(deck); !errors.Is(err, errDB) {
				t.Errorf("expected wrapped database error, got %v", err)
			}
		})

		t.Run("BeginError", func(t *testing.T) {
			mock, decks, _ := newMock(t)
			mock.ExpectBegin().WillReturnError(errDB)

			deck := &models.Decklist{Name: "Burn", Format: "Modern", URL: "https://www.moxfield.com/decks/burn"}
			if err := decks.Create(deck); !errors.Is(err, errDB) {
				t.Errorf("expected begin error, got %v", err)
			}
		})
	})

	t.Run("UpdateCards", func(t *testing.T) {
		t.Run("InsertErrorRollsBack", func(t *testing.T) {
			mock, decks, _ := newMock(t)
			mock.ExpectBegin()
			mock.ExpectExec("UPDATE decklists SET updated_at").WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectExec("DELETE FROM deck_entries").WillReturnResult(sqlmock.NewResult(0, 3))
			mock.ExpectExec("INSERT INTO deck_entries").WillReturnError(errDB)
			mock.ExpectRollback()

			if err := decks.UpdateCards("deck-1", models.CardMap{"Bolt": 4}); !errors.Is(err, errDB) {
				t.Errorf("expected wrapped database error, got %v", err)
			}
		})

		t.Run("CommitError", func(t *testing.T) {
			mock, decks, _ := newMock(t)
			mock.ExpectBegin()
			mock.ExpectExec("UPDATE decklists SET updated_at").WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectExec("DELETE FROM deck_entries").WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectCommit().WillReturnError(errDB)

			if err := decks.UpdateCards("deck-1", models.CardMap{}); !errors.Is(err, errDB) {
				t.Errorf("expected commit error, got %v", err)
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		mock, decks, _ := newMock(t)
		mock.ExpectExec("DELETE FROM decklists").WithArgs("deck-1").WillReturnError(errDB)

		if _, err := decks.Delete("deck-1"); !errors.Is(err, errDB) {
			t.Errorf("expected wrapped database error, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		mock, decks, _ := newMock(t)
		mock.ExpectQuery("SELECT .* FROM decklists ORDER BY sequence").WillReturnError(errDB)

		if _, err := decks.List(); !errors.Is(err, errDB) {
			t.Errorf("expected wrapped database error, got %v", err)
		}
	})

	t.Run("Cards", func(t *testing.T) {
		mock, decks, _ := newMock(t)
		rows := sqlmock.NewRows([]string{"card_name", "quantity"}).AddRow("Bolt", "four")
		mock.ExpectQuery("SELECT card_name, quantity FROM deck_entries").WillReturnRows(rows)

		if _, err := decks.Cards("deck-1"); err == nil {
			t.Error("expected scan error for non-numeric quantity")
		}
	})
}
