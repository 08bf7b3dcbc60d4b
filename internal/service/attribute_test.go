package service

import (
	"testing"

	"github.com/printprice/printprice/internal/api/dto"
	"github.com/printprice/printprice/internal/domain/attribute"
	"github.com/printprice/printprice/internal/domain/product"
	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/printprice/printprice/internal/testutil"
	"github.com/printprice/printprice/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type AttributeServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  AttributeService
	testData struct {
		products struct {
			cards  *product.Product
			poster *product.Product
		}
		types struct {
			paperGSM   *attribute.AttributeType
			lamination *attribute.AttributeType
			corners    *attribute.AttributeType
		}
		values struct {
			gsm350      *attribute.AttributeValue
			gsm700      *attribute.AttributeValue
			gsm350Cards *attribute.AttributeValue
			matte       *attribute.AttributeValue
			gloss       *attribute.AttributeValue
		}
		rules struct {
			heavyStock *attribute.AttributeRule
			hideGloss  *attribute.AttributeRule
		}
	}
}

func TestAttributeService(t *testing.T) {
	suite.Run(t, new(AttributeServiceSuite))
}

func (s *AttributeServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.setupService()
	s.setupTestData()
}

func (s *AttributeServiceSuite) TearDownTest() {
	s.BaseServiceTestSuite.TearDownTest()
}

func (s *AttributeServiceSuite) setupService() {
	s.service = NewAttributeService(ServiceParams{
		Logger:            s.GetLogger(),
		Config:            s.GetConfig(),
		DB:                s.GetDB(),
		ProductRepo:       s.GetStores().ProductRepo,
		GeoZoneRepo:       s.GetStores().GeoZoneRepo,
		UserSegmentRepo:   s.GetStores().UserSegmentRepo,
		PriceBookRepo:     s.GetStores().PriceBookRepo,
		AttributeRepo:     s.GetStores().AttributeRepo,
		PriceModifierRepo: s.GetStores().PriceModifierRepo,
		PricingRepo:       s.GetStores().PricingRepo,
		WebhookPublisher:  s.GetWebhookPublisher(),
	})
}

func (s *AttributeServiceSuite) setupTestData() {
	ctx := s.GetContext()

	s.testData.products.cards = &product.Product{
		ID:            "prod_cards",
		Name:          "Business Cards",
		GSTPercentage: decimal.NewFromInt(18),
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	s.testData.products.poster = &product.Product{
		ID:            "prod_poster",
		Name:          "A2 Poster",
		GSTPercentage: decimal.NewFromInt(18),
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().ProductRepo.Create(ctx, s.testData.products.cards))
	s.NoError(s.GetStores().ProductRepo.Create(ctx, s.testData.products.poster))

	s.testData.types.paperGSM = &attribute.AttributeType{
		ID:          "attrtype_paper_gsm",
		Name:        "paper_gsm",
		DisplayName: "Paper GSM",
		InputType:   types.AttributeInputTypeSelect,
		IsRequired:  true,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
	s.testData.types.lamination = &attribute.AttributeType{
		ID:          "attrtype_lamination",
		Name:        "lamination",
		DisplayName: "Lamination",
		InputType:   types.AttributeInputTypeMultiSelect,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
	s.testData.types.corners = &attribute.AttributeType{
		ID:          "attrtype_corners",
		Name:        "corners",
		DisplayName: "Corner Style",
		InputType:   types.AttributeInputTypeSelect,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
	for _, t := range []*attribute.AttributeType{
		s.testData.types.paperGSM,
		s.testData.types.lamination,
		s.testData.types.corners,
	} {
		s.NoError(s.GetStores().AttributeRepo.CreateType(ctx, t))
	}

	s.testData.values.gsm350 = &attribute.AttributeValue{
		ID:              "attrval_gsm_350",
		AttributeTypeID: "attrtype_paper_gsm",
		Value:           "350",
		DisplayLabel:    "350 GSM",
		PricingKey:      "paper_gsm_350",
		SortOrder:       1,
		BaseModel:       types.GetDefaultBaseModel(ctx),
	}
	s.testData.values.gsm700 = &attribute.AttributeValue{
		ID:              "attrval_gsm_700",
		AttributeTypeID: "attrtype_paper_gsm",
		Value:           "700",
		DisplayLabel:    "700 GSM",
		PricingKey:      "paper_gsm_700",
		SortOrder:       2,
		BaseModel:       types.GetDefaultBaseModel(ctx),
	}
	s.testData.values.gsm350Cards = &attribute.AttributeValue{
		ID:              "attrval_gsm_350_cards",
		AttributeTypeID: "attrtype_paper_gsm",
		ProductID:       lo.ToPtr("prod_cards"),
		Value:           "350",
		DisplayLabel:    "350 GSM Premium",
		PricingKey:      "paper_gsm_350_premium",
		SortOrder:       1,
		BaseModel:       types.GetDefaultBaseModel(ctx),
	}
	s.testData.values.matte = &attribute.AttributeValue{
		ID:              "attrval_matte",
		AttributeTypeID: "attrtype_lamination",
		Value:           "matte",
		DisplayLabel:    "Matte",
		PricingKey:      "lamination_matte",
		SortOrder:       1,
		BaseModel:       types.GetDefaultBaseModel(ctx),
	}
	s.testData.values.gloss = &attribute.AttributeValue{
		ID:              "attrval_gloss",
		AttributeTypeID: "attrtype_lamination",
		Value:           "gloss",
		DisplayLabel:    "Gloss",
		PricingKey:      "lamination_gloss",
		SortOrder:       2,
		BaseModel:       types.GetDefaultBaseModel(ctx),
	}
	for _, v := range []*attribute.AttributeValue{
		s.testData.values.gsm350,
		s.testData.values.gsm700,
		s.testData.values.gsm350Cards,
		s.testData.values.matte,
		s.testData.values.gloss,
	} {
		s.NoError(s.GetStores().AttributeRepo.CreateValue(ctx, v))
	}

	s.testData.rules.heavyStock = &attribute.AttributeRule{
		ID:                  "attrrule_heavy_stock",
		Name:                "Heavy stock handling",
		WhenAttributeTypeID: "attrtype_paper_gsm",
		WhenValue:           "700",
		Action:              types.AttributeRuleActionTriggerPricing,
		PricingSignal:       attribute.JSONBStringList{"heavy_stock_handling"},
		BaseModel:           types.GetDefaultBaseModel(ctx),
	}
	s.testData.rules.hideGloss = &attribute.AttributeRule{
		ID:                    "attrrule_hide_gloss",
		Name:                  "Hide gloss on heavy stock",
		WhenAttributeTypeID:   "attrtype_paper_gsm",
		WhenValue:             "700",
		Action:                types.AttributeRuleActionHide,
		TargetAttributeTypeID: lo.ToPtr("attrtype_lamination"),
		BaseModel:             types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().AttributeRepo.CreateRule(ctx, s.testData.rules.heavyStock))
	s.NoError(s.GetStores().AttributeRepo.CreateRule(ctx, s.testData.rules.hideGloss))
}

func (s *AttributeServiceSuite) TestCreateAttributeType() {
	tests := []struct {
		name      string
		req       dto.CreateAttributeTypeRequest
		wantErr   bool
		errString string
	}{
		{
			name: "valid select type",
			req: dto.CreateAttributeTypeRequest{
				Name:        "binding_type",
				DisplayName: "Binding",
				InputType:   types.AttributeInputTypeSelect,
				IsRequired:  true,
			},
		},
		{
			name: "valid free text type",
			req: dto.CreateAttributeTypeRequest{
				Name:        "gift_note",
				DisplayName: "Gift Note",
				InputType:   types.AttributeInputTypeText,
			},
		},
		{
			name: "missing name",
			req: dto.CreateAttributeTypeRequest{
				DisplayName: "Binding",
				InputType:   types.AttributeInputTypeSelect,
			},
			wantErr:   true,
			errString: "name is required",
		},
		{
			name: "missing display name",
			req: dto.CreateAttributeTypeRequest{
				Name:      "binding_type",
				InputType: types.AttributeInputTypeSelect,
			},
			wantErr:   true,
			errString: "display_name is required",
		},
		{
			name: "bad input type",
			req: dto.CreateAttributeTypeRequest{
				Name:        "binding_type",
				DisplayName: "Binding",
				InputType:   types.AttributeInputType("DROPDOWN"),
			},
			wantErr:   true,
			errString: "invalid attribute input type",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			resp, err := s.service.CreateAttributeType(s.GetContext(), tt.req)
			if tt.wantErr {
				s.Error(err)
				if tt.errString != "" {
					s.Contains(err.Error(), tt.errString)
				}
				return
			}
			s.NoError(err)
			s.NotNil(resp)
			s.NotEmpty(resp.ID)
			s.Equal(tt.req.Name, resp.Name)
			s.Equal(tt.req.IsRequired, resp.IsRequired)
		})
	}
}

func (s *AttributeServiceSuite) TestGetAttributeType() {
	resp, err := s.service.GetAttributeType(s.GetContext(), "attrtype_paper_gsm")
	s.NoError(err)
	s.Equal("paper_gsm", resp.Name)
	s.True(resp.IsRequired)

	_, err = s.service.GetAttributeType(s.GetContext(), "attrtype_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *AttributeServiceSuite) TestListAttributeTypes() {
	resp, err := s.service.ListAttributeTypes(s.GetContext(), nil)
	s.NoError(err)
	s.Equal(3, resp.Pagination.Total)
	// Sorted by machine name
	s.Equal("corners", resp.Items[0].Name)
	s.Equal("lamination", resp.Items[1].Name)
	s.Equal("paper_gsm", resp.Items[2].Name)

	byName := types.NewAttributeTypeFilter()
	byName.Name = lo.ToPtr("paper")
	resp, err = s.service.ListAttributeTypes(s.GetContext(), byName)
	s.NoError(err)
	s.Equal(1, resp.Pagination.Total)
	s.Equal("paper_gsm", resp.Items[0].Name)

	byInput := types.NewAttributeTypeFilter()
	byInput.InputType = lo.ToPtr(types.AttributeInputTypeMultiSelect)
	resp, err = s.service.ListAttributeTypes(s.GetContext(), byInput)
	s.NoError(err)
	s.Equal(1, resp.Pagination.Total)
	s.Equal("lamination", resp.Items[0].Name)
}

func (s *AttributeServiceSuite) TestUpdateAttributeType() {
	resp, err := s.service.UpdateAttributeType(s.GetContext(), "attrtype_corners", dto.UpdateAttributeTypeRequest{
		DisplayName: lo.ToPtr("Corner Finish"),
		IsRequired:  lo.ToPtr(true),
	})
	s.NoError(err)
	s.Equal("Corner Finish", resp.DisplayName)
	s.True(resp.IsRequired)

	_, err = s.service.UpdateAttributeType(s.GetContext(), "attrtype_corners", dto.UpdateAttributeTypeRequest{
		DisplayName: lo.ToPtr(""),
	})
	s.Error(err)
	s.Contains(err.Error(), "display_name must not be empty")

	_, err = s.service.UpdateAttributeType(s.GetContext(), "attrtype_missing", dto.UpdateAttributeTypeRequest{
		DisplayName: lo.ToPtr("Ghost"),
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *AttributeServiceSuite) TestDeleteAttributeType() {
	s.NoError(s.service.DeleteAttributeType(s.GetContext(), "attrtype_corners"))

	_, err := s.service.GetAttributeType(s.GetContext(), "attrtype_corners")
	s.Error(err)
	s.True(ierr.IsNotFound(err))

	err = s.service.DeleteAttributeType(s.GetContext(), "attrtype_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *AttributeServiceSuite) TestCreateValue() {
	tests := []struct {
		name            string
		attributeTypeID string
		req             dto.CreateAttributeValueRequest
		wantErr         bool
		errString       string
	}{
		{
			name:            "valid catalog value",
			attributeTypeID: "attrtype_corners",
			req: dto.CreateAttributeValueRequest{
				Value:      "rounded",
				PricingKey: "corners_rounded",
				SortOrder:  1,
			},
		},
		{
			name:            "valid product override",
			attributeTypeID: "attrtype_corners",
			req: dto.CreateAttributeValueRequest{
				ProductID:    lo.ToPtr("prod_cards"),
				Value:        "rounded",
				DisplayLabel: "Rounded (die cut)",
				PricingKey:   "corners_rounded_die_cut",
				SortOrder:    1,
			},
		},
		{
			name:            "missing value",
			attributeTypeID: "attrtype_corners",
			req:             dto.CreateAttributeValueRequest{PricingKey: "corners_square"},
			wantErr:         true,
			errString:       "value is required",
		},
		{
			name:            "unknown attribute type",
			attributeTypeID: "attrtype_missing",
			req:             dto.CreateAttributeValueRequest{Value: "rounded"},
			wantErr:         true,
			errString:       "not found",
		},
		{
			name:            "unknown product",
			attributeTypeID: "attrtype_corners",
			req: dto.CreateAttributeValueRequest{
				ProductID: lo.ToPtr("prod_missing"),
				Value:     "rounded",
			},
			wantErr:   true,
			errString: "not found",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			resp, err := s.service.CreateValue(s.GetContext(), tt.attributeTypeID, tt.req)
			if tt.wantErr {
				s.Error(err)
				if tt.errString != "" {
					s.Contains(err.Error(), tt.errString)
				}
				return
			}
			s.NoError(err)
			s.NotNil(resp)
			s.Equal(tt.attributeTypeID, resp.AttributeTypeID)
			// Display label falls back to the value string
			s.NotEmpty(resp.DisplayLabel)
		})
	}
}

func (s *AttributeServiceSuite) TestCreateValueDefaultsDisplayLabel() {
	resp, err := s.service.CreateValue(s.GetContext(), "attrtype_corners", dto.CreateAttributeValueRequest{
		Value: "square",
	})
	s.NoError(err)
	s.Equal("square", resp.DisplayLabel)
}

func (s *AttributeServiceSuite) TestListValues() {
	resp, err := s.service.ListValues(s.GetContext(), "attrtype_paper_gsm", "")
	s.NoError(err)
	s.Equal(2, resp.Total)
	s.Equal("350", resp.Items[0].Value)
	s.Equal("700", resp.Items[1].Value)

	// A product sees the catalog values plus its own overrides
	resp, err = s.service.ListValues(s.GetContext(), "attrtype_paper_gsm", "prod_cards")
	s.NoError(err)
	s.Equal(3, resp.Total)
	keys := lo.Map(resp.Items, func(v *dto.AttributeValueResponse, _ int) string {
		return v.PricingKey
	})
	s.ElementsMatch([]string{"paper_gsm_350", "paper_gsm_350_premium", "paper_gsm_700"}, keys)

	// Another product sees only the catalog values
	resp, err = s.service.ListValues(s.GetContext(), "attrtype_paper_gsm", "prod_poster")
	s.NoError(err)
	s.Equal(2, resp.Total)

	_, err = s.service.ListValues(s.GetContext(), "attrtype_missing", "")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *AttributeServiceSuite) TestUpdateValue() {
	resp, err := s.service.UpdateValue(s.GetContext(), "attrval_gsm_700", dto.UpdateAttributeValueRequest{
		DisplayLabel: lo.ToPtr("700 GSM Board"),
		PricingKey:   lo.ToPtr("paper_gsm_700_board"),
		SortOrder:    lo.ToPtr(5),
	})
	s.NoError(err)
	s.Equal("700 GSM Board", resp.DisplayLabel)
	s.Equal("paper_gsm_700_board", resp.PricingKey)
	s.Equal(5, resp.SortOrder)
	// The value string itself never changes
	s.Equal("700", resp.Value)

	_, err = s.service.UpdateValue(s.GetContext(), "attrval_gsm_700", dto.UpdateAttributeValueRequest{
		DisplayLabel: lo.ToPtr(""),
	})
	s.Error(err)
	s.Contains(err.Error(), "display_label must not be empty")

	_, err = s.service.UpdateValue(s.GetContext(), "attrval_missing", dto.UpdateAttributeValueRequest{
		SortOrder: lo.ToPtr(1),
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *AttributeServiceSuite) TestDeleteValue() {
	s.NoError(s.service.DeleteValue(s.GetContext(), "attrval_gloss"))

	resp, err := s.service.ListValues(s.GetContext(), "attrtype_lamination", "")
	s.NoError(err)
	s.Equal(1, resp.Total)
	s.Equal("matte", resp.Items[0].Value)

	err = s.service.DeleteValue(s.GetContext(), "attrval_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *AttributeServiceSuite) TestCreateRule() {
	tests := []struct {
		name      string
		req       dto.CreateAttributeRuleRequest
		wantErr   bool
		errString string
	}{
		{
			name: "valid trigger pricing rule",
			req: dto.CreateAttributeRuleRequest{
				Name:                "Rounded corner surcharge",
				WhenAttributeTypeID: "attrtype_corners",
				WhenValue:           "rounded",
				Action:              types.AttributeRuleActionTriggerPricing,
				PricingSignal:       []string{"die_cutting"},
			},
		},
		{
			name: "valid show rule",
			req: dto.CreateAttributeRuleRequest{
				Name:                  "Show lamination on thick paper",
				WhenAttributeTypeID:   "attrtype_paper_gsm",
				WhenValue:             "350",
				Action:                types.AttributeRuleActionShow,
				TargetAttributeTypeID: lo.ToPtr("attrtype_lamination"),
			},
		},
		{
			name: "valid set default rule",
			req: dto.CreateAttributeRuleRequest{
				Name:                  "Default to matte on thick paper",
				WhenAttributeTypeID:   "attrtype_paper_gsm",
				WhenValue:             "350",
				Action:                types.AttributeRuleActionSetDefault,
				TargetAttributeTypeID: lo.ToPtr("attrtype_lamination"),
				TargetValue:           lo.ToPtr("matte"),
			},
		},
		{
			name: "missing name",
			req: dto.CreateAttributeRuleRequest{
				WhenAttributeTypeID: "attrtype_corners",
				WhenValue:           "rounded",
				Action:              types.AttributeRuleActionTriggerPricing,
				PricingSignal:       []string{"die_cutting"},
			},
			wantErr:   true,
			errString: "name is required",
		},
		{
			name: "missing condition",
			req: dto.CreateAttributeRuleRequest{
				Name:          "Broken",
				WhenValue:     "rounded",
				Action:        types.AttributeRuleActionTriggerPricing,
				PricingSignal: []string{"die_cutting"},
			},
			wantErr:   true,
			errString: "rule condition is required",
		},
		{
			name: "trigger pricing without signal",
			req: dto.CreateAttributeRuleRequest{
				Name:                "Silent trigger",
				WhenAttributeTypeID: "attrtype_corners",
				WhenValue:           "rounded",
				Action:              types.AttributeRuleActionTriggerPricing,
			},
			wantErr:   true,
			errString: "pricing_signal is required for TRIGGER_PRICING rules",
		},
		{
			name: "set default without target",
			req: dto.CreateAttributeRuleRequest{
				Name:                "Aimless default",
				WhenAttributeTypeID: "attrtype_corners",
				WhenValue:           "rounded",
				Action:              types.AttributeRuleActionSetDefault,
			},
			wantErr:   true,
			errString: "target is required for SET_DEFAULT rules",
		},
		{
			name: "hide without target",
			req: dto.CreateAttributeRuleRequest{
				Name:                "Aimless hide",
				WhenAttributeTypeID: "attrtype_corners",
				WhenValue:           "rounded",
				Action:              types.AttributeRuleActionHide,
			},
			wantErr:   true,
			errString: "target is required for SHOW and HIDE rules",
		},
		{
			name: "invalid action",
			req: dto.CreateAttributeRuleRequest{
				Name:                "Weird action",
				WhenAttributeTypeID: "attrtype_corners",
				WhenValue:           "rounded",
				Action:              types.AttributeRuleAction("EXPLODE"),
			},
			wantErr:   true,
			errString: "invalid attribute rule action",
		},
		{
			name: "unknown when attribute type",
			req: dto.CreateAttributeRuleRequest{
				Name:                "Dangling condition",
				WhenAttributeTypeID: "attrtype_missing",
				WhenValue:           "rounded",
				Action:              types.AttributeRuleActionTriggerPricing,
				PricingSignal:       []string{"die_cutting"},
			},
			wantErr:   true,
			errString: "not found",
		},
		{
			name: "unknown target attribute type",
			req: dto.CreateAttributeRuleRequest{
				Name:                  "Dangling target",
				WhenAttributeTypeID:   "attrtype_corners",
				WhenValue:             "rounded",
				Action:                types.AttributeRuleActionHide,
				TargetAttributeTypeID: lo.ToPtr("attrtype_missing"),
			},
			wantErr:   true,
			errString: "not found",
		},
		{
			name: "unknown product",
			req: dto.CreateAttributeRuleRequest{
				Name:                "Dangling product",
				ProductID:           lo.ToPtr("prod_missing"),
				WhenAttributeTypeID: "attrtype_corners",
				WhenValue:           "rounded",
				Action:              types.AttributeRuleActionTriggerPricing,
				PricingSignal:       []string{"die_cutting"},
			},
			wantErr:   true,
			errString: "not found",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			resp, err := s.service.CreateRule(s.GetContext(), tt.req)
			if tt.wantErr {
				s.Error(err)
				if tt.errString != "" {
					s.Contains(err.Error(), tt.errString)
				}
				return
			}
			s.NoError(err)
			s.NotNil(resp)
			s.NotEmpty(resp.ID)
			s.Equal(tt.req.Action, resp.Action)
		})
	}
}

func (s *AttributeServiceSuite) TestListRules() {
	resp, err := s.service.ListRules(s.GetContext(), nil)
	s.NoError(err)
	s.Equal(2, resp.Pagination.Total)

	byAction := types.NewAttributeRuleFilter()
	byAction.Action = lo.ToPtr(types.AttributeRuleActionTriggerPricing)
	resp, err = s.service.ListRules(s.GetContext(), byAction)
	s.NoError(err)
	s.Equal(1, resp.Pagination.Total)
	s.Equal("attrrule_heavy_stock", resp.Items[0].ID)

	byType := types.NewAttributeRuleFilter()
	byType.AttributeTypeID = lo.ToPtr("attrtype_lamination")
	resp, err = s.service.ListRules(s.GetContext(), byType)
	s.NoError(err)
	s.Equal(0, resp.Pagination.Total)
}

func (s *AttributeServiceSuite) TestUpdateRule() {
	resp, err := s.service.UpdateRule(s.GetContext(), "attrrule_heavy_stock", dto.UpdateAttributeRuleRequest{
		Name:          lo.ToPtr("Heavy stock surcharges"),
		PricingSignal: []string{"heavy_stock_handling", "oversize_packaging"},
	})
	s.NoError(err)
	s.Equal("Heavy stock surcharges", resp.Name)
	s.Equal(attribute.JSONBStringList{"heavy_stock_handling", "oversize_packaging"}, resp.PricingSignal)

	_, err = s.service.UpdateRule(s.GetContext(), "attrrule_hide_gloss", dto.UpdateAttributeRuleRequest{
		PricingSignal: []string{"sneaky_surcharge"},
	})
	s.Error(err)
	s.Contains(err.Error(), "pricing_signal only applies to TRIGGER_PRICING rules")

	_, err = s.service.UpdateRule(s.GetContext(), "attrrule_heavy_stock", dto.UpdateAttributeRuleRequest{
		Name: lo.ToPtr(""),
	})
	s.Error(err)
	s.Contains(err.Error(), "name must not be empty")

	_, err = s.service.UpdateRule(s.GetContext(), "attrrule_missing", dto.UpdateAttributeRuleRequest{
		Name: lo.ToPtr("Ghost"),
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *AttributeServiceSuite) TestDeleteRule() {
	s.NoError(s.service.DeleteRule(s.GetContext(), "attrrule_hide_gloss"))

	_, err := s.service.GetRule(s.GetContext(), "attrrule_hide_gloss")
	s.Error(err)
	s.True(ierr.IsNotFound(err))

	err = s.service.DeleteRule(s.GetContext(), "attrrule_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *AttributeServiceSuite) TestExtractSignals() {
	ctx := s.GetContext()

	s.Run("no selections", func() {
		signals, err := s.service.ExtractSignals(ctx, "prod_poster", nil)
		s.NoError(err)
		s.Empty(signals)
	})

	s.Run("select resolves the pricing key", func() {
		signals, err := s.service.ExtractSignals(ctx, "prod_poster", map[string]any{
			"paper_gsm": "350",
		})
		s.NoError(err)
		s.Equal([]attribute.Signal{
			{
				AttributeTypeID: "attrtype_paper_gsm",
				AttributeName:   "paper_gsm",
				PricingKey:      "paper_gsm_350",
				Value:           "350",
			},
		}, signals)
	})

	s.Run("product override shadows the catalog value", func() {
		signals, err := s.service.ExtractSignals(ctx, "prod_cards", map[string]any{
			"paper_gsm": "350",
		})
		s.NoError(err)
		s.Len(signals, 1)
		s.Equal("paper_gsm_350_premium", signals[0].PricingKey)
	})

	s.Run("numeric selection is stringified", func() {
		signals, err := s.service.ExtractSignals(ctx, "prod_poster", map[string]any{
			"paper_gsm": float64(350),
		})
		s.NoError(err)
		s.Len(signals, 1)
		s.Equal("350", signals[0].Value)
		s.Equal("paper_gsm_350", signals[0].PricingKey)
	})

	s.Run("multi select expands in order", func() {
		signals, err := s.service.ExtractSignals(ctx, "prod_poster", map[string]any{
			"lamination": []any{"matte", "gloss"},
		})
		s.NoError(err)
		s.Equal([]string{"lamination_matte", "lamination_gloss"}, attribute.Keys(signals))
	})

	s.Run("unknown attribute is carried as free text", func() {
		signals, err := s.service.ExtractSignals(ctx, "prod_poster", map[string]any{
			"gift_note": "Happy Diwali",
		})
		s.NoError(err)
		s.Equal([]attribute.Signal{
			{
				AttributeName: "gift_note",
				Value:         "Happy Diwali",
			},
		}, signals)
		s.Empty(attribute.Keys(signals))
	})

	s.Run("trigger pricing injects a synthetic signal", func() {
		signals, err := s.service.ExtractSignals(ctx, "prod_poster", map[string]any{
			"paper_gsm": "700",
		})
		s.NoError(err)
		s.Equal([]string{"paper_gsm_700", "heavy_stock_handling"}, attribute.Keys(signals))
		s.Len(signals, 2)
		// The synthetic signal stays traceable to the triggering attribute
		s.Equal("attrtype_paper_gsm", signals[1].AttributeTypeID)
		s.Equal("700", signals[1].Value)
	})

	s.Run("signal order is deterministic across calls", func() {
		selections := map[string]any{
			"paper_gsm":  "350",
			"lamination": "matte",
			"zz_rush":    "same day",
		}
		first, err := s.service.ExtractSignals(ctx, "prod_poster", selections)
		s.NoError(err)
		second, err := s.service.ExtractSignals(ctx, "prod_poster", selections)
		s.NoError(err)
		s.Equal(first, second)
		// Attribute names are walked sorted
		s.Equal("lamination", first[0].AttributeName)
		s.Equal("paper_gsm", first[1].AttributeName)
		s.Equal("zz_rush", first[2].AttributeName)
	})
}
