/*
 * Copyright 2026 The Tasklane Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidation(t *testing.T) {
	t.Run("ValidateValue test", func(t *testing.T) {
		assert.NoError(t, ValidateValue("Design Team", "required,workspace_name,max=60"))
		assert.NoError(t, ValidateValue("Команда 7", "required,workspace_name,max=60"))

		err := ValidateValue(" leading space", "required,workspace_name")
		assert.Equal(t, "workspace_name", err.(Violation).Tag)

		err = ValidateValue("team<script>", "required,workspace_name")
		assert.Equal(t, "workspace_name", err.(Violation).Tag)

		assert.NoError(t, ValidateValue("-1001234567", "channel_id"))
		err = ValidateValue("@someone", "channel_id")
		assert.Equal(t, "channel_id", err.(Violation).Tag)

		assert.NoError(t, ValidateValue("168h", "duration"))
		err = ValidateValue("one hour", "duration")
		assert.Equal(t, "duration", err.(Violation).Tag)
	})

	t.Run("ValidateStruct test", func(t *testing.T) {
		type invite struct {
			Email string `validate:"required,email"`
			Role  string `validate:"required,oneof=ADMIN MEMBER"`
		}

		err := ValidateStruct(invite{Email: "not-an-email", Role: "OWNER"})
		structError := err.(*StructError)
		assert.Len(t, structError.Violations, 2)
		assert.Equal(t, "Email", structError.Violations[0].Field)

		assert.NoError(t, ValidateStruct(invite{Email: "b@x.com", Role: "MEMBER"}))
	})

	t.Run("custom rule test", func(t *testing.T) {
		_ = RegisterValidation("custom", func(v FieldLevel) bool {
			return v.Field().String() == "custom"
		})
		myError := errors.New("custom error")
		_ = RegisterTranslation("custom", myError.Error())

		err := ValidateValue("custom-invalid-value", "required,custom")
		assert.Equal(t, "custom error", err.Error())
		assert.NoError(t, ValidateValue("custom", "required,custom"))
	})
}
