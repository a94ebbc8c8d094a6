// Package mocks provides mock expectation helpers for common testing patterns
package mocks

import (
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/rpg-action/internal/clients/gamedata"
	gamedatamock "github.com/KirkDiggler/rpg-action/internal/clients/gamedata/mock"
	"github.com/KirkDiggler/rpg-action/internal/entities"
	"github.com/KirkDiggler/rpg-action/internal/errors"
)

// ExpectTables backs every lookup of mockClient with rows from tables.
// Ids absent from tables return NotFound, which lets a test remove a row
// to exercise a failure path.
func ExpectTables(mockClient *gamedatamock.MockClient, tables *gamedata.Tables) {
	mockClient.EXPECT().GetCharacter(gomock.Any()).DoAndReturn(func(id string) (*entities.Character, error) {
		return find(tables.Characters, "character", id, func(c *entities.Character) string { return c.ID })
	}).AnyTimes()
	mockClient.EXPECT().GetWeapon(gomock.Any()).DoAndReturn(func(id string) (*entities.Weapon, error) {
		return find(tables.Weapons, "weapon", id, func(w *entities.Weapon) string { return w.ID })
	}).AnyTimes()
	mockClient.EXPECT().GetShield(gomock.Any()).DoAndReturn(func(id string) (*entities.Shield, error) {
		return find(tables.Shields, "shield", id, func(s *entities.Shield) string { return s.ID })
	}).AnyTimes()
	mockClient.EXPECT().GetSkill(gomock.Any()).DoAndReturn(func(id string) (*entities.Skill, error) {
		return find(tables.Skills, "skill", id, func(s *entities.Skill) string { return s.ID })
	}).AnyTimes()
	mockClient.EXPECT().GetItem(gomock.Any()).DoAndReturn(func(id string) (*entities.Item, error) {
		return find(tables.Items, "item", id, func(i *entities.Item) string { return i.ID })
	}).AnyTimes()
	mockClient.EXPECT().GetStage(gomock.Any()).DoAndReturn(func(id string) (*entities.Stage, error) {
		return find(tables.Stages, "stage", id, func(s *entities.Stage) string { return s.ID })
	}).AnyTimes()
	mockClient.EXPECT().GetSequence(gomock.Any()).DoAndReturn(func(id string) (*entities.Sequence, error) {
		return find(tables.Sequences, "sequence", id, func(s *entities.Sequence) string { return s.ID })
	}).AnyTimes()
	mockClient.EXPECT().Levels().Return(tables.Levels).AnyTimes()
	mockClient.EXPECT().Settings().Return(tables.Settings).AnyTimes()
}

func find[T any](rows []*T, kind, id string, key func(*T) string) (*T, error) {
	for _, row := range rows {
		if key(row) == id {
			return row, nil
		}
	}
	return nil, errors.NotFoundf("%s not found: %s", kind, id)
}
