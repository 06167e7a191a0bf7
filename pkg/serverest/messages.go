/*
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package serverest

// Literal messages returned by the service. They are part of the public
// contract and are asserted verbatim.
const (
	MessageCreated           = "Cadastro realizado com sucesso"
	MessageDeleted           = "Registro excluído com sucesso"
	MessageNothingDeleted    = "Nenhum registro excluído"
	MessageCartCancelled     = "Registro excluído com sucesso. Estoque dos produtos reabastecido"
	MessageNoCartForUser     = "Não foi encontrado carrinho para esse usuário"
	MessageLoginSuccess      = "Login realizado com sucesso"
	MessageLoginInvalid      = "Email e/ou senha inválidos"
	MessageEmailInUse        = "Este email já está sendo usado"
	MessageProductNameInUse  = "Já existe produto com esse nome"
	MessageTokenInvalid      = "Token de acesso ausente, inválido, expirado ou usuário do token não existe mais"
	MessageAdminOnly         = "Rota exclusiva para administradores"
	MessageSingleCart        = "Não é permitido ter mais de 1 carrinho"
	MessageDuplicateProduct  = "Não é permitido possuir produto duplicado"
	MessageProductNotFound   = "Produto não encontrado"
	MessageUserNotFound      = "Usuário não encontrado"
	MessageCartNotFound      = "Carrinho não encontrado"
	MessageInsufficientStock = "Produto não possui quantidade suficiente"
	MessageUserHasCart       = "Não é permitido excluir usuário com carrinho cadastrado"
	MessageProductInCart     = "Não é permitido excluir produto que faz parte de carrinho"
)

// Field validation messages, keyed in the response body by the offending field.
const (
	MessageNameRequired          = "nome é obrigatório"
	MessageEmailRequired         = "email é obrigatório"
	MessageEmailInvalid          = "email deve ser um email válido"
	MessagePasswordRequired      = "password é obrigatório"
	MessageAdministratorRequired = "administrador é obrigatório"
	MessageAdministratorInvalid  = "administrador deve ser 'true' ou 'false'"
	MessagePriceRequired         = "preco é obrigatório"
	MessagePricePositive         = "preco deve ser um número positivo"
	MessageDescriptionRequired   = "descricao é obrigatório"
	MessageQuantityRequired      = "quantidade é obrigatório"
	MessageQuantityNonNegative   = "quantidade deve ser maior ou igual a 0"
	MessageProductsRequired      = "produtos é obrigatório"
	MessageIDFormat              = "id deve ter exatamente 16 caracteres alfanuméricos"
)
