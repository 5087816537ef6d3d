package langregistry

import (
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Capture naming contract used by every grammar's query below and consumed
// by internal/extractor:
//   @<kind>.definition   the whole declaration, kind is one of the
//                        types.Kind wire names (function, method, class, ...)
//   @<kind>.name         the identifier naming that declaration
//   @reference.name      an identifier used at a call/reference site
//   @import.name         the module/path string of an import statement

func setupGo() *Language {
	return newLanguage("go", tree_sitter_go.Language(), `
		(function_declaration name: (identifier) @function.name) @function.definition
		(method_declaration name: (field_identifier) @method.name) @method.definition
		(type_spec name: (type_identifier) @struct.name type: (struct_type)) @struct.definition
		(type_spec name: (type_identifier) @interface.name type: (interface_type)) @interface.definition
		(type_spec name: (type_identifier) @type_alias.name) @type_alias.definition
		(const_spec name: (identifier) @constant.name) @constant.definition
		(var_spec name: (identifier) @variable.name) @variable.definition
		(import_spec path: (interpreted_string_literal) @import.name) @import.definition
		(call_expression function: (identifier) @reference.name)
		(call_expression function: (selector_expression field: (field_identifier) @reference.name))
	`)
}

func setupJavaScript() *Language {
	return newLanguage("javascript", tree_sitter_javascript.Language(), `
		(function_declaration name: (identifier) @function.name) @function.definition
		(generator_function_declaration name: (identifier) @function.name) @function.definition
		(method_definition name: (property_identifier) @method.name) @method.definition
		(class_declaration name: (identifier) @class.name) @class.definition
		(variable_declarator name: (identifier) @variable.name value: (_)) @variable.definition
		(import_statement source: (string) @import.name) @import.definition
		(call_expression function: (identifier) @reference.name)
		(call_expression function: (member_expression property: (property_identifier) @reference.name))
	`)
}

func setupTypeScript() *Language {
	return newLanguage("typescript", tree_sitter_typescript.LanguageTypescript(), `
		(function_declaration name: (identifier) @function.name) @function.definition
		(method_definition name: (property_identifier) @method.name) @method.definition
		(class_declaration name: (type_identifier) @class.name) @class.definition
		(interface_declaration name: (type_identifier) @interface.name) @interface.definition
		(type_alias_declaration name: (type_identifier) @type_alias.name) @type_alias.definition
		(enum_declaration name: (identifier) @enum.name) @enum.definition
		(variable_declarator name: (identifier) @variable.name value: (_)) @variable.definition
		(import_statement source: (string) @import.name) @import.definition
		(call_expression function: (identifier) @reference.name)
		(call_expression function: (member_expression property: (property_identifier) @reference.name))
	`)
}

func setupPython() *Language {
	return newLanguage("python", tree_sitter_python.Language(), `
		(class_definition
			body: (block (function_definition name: (identifier) @method.name) @method.definition))
		(function_definition name: (identifier) @function.name) @function.definition
		(class_definition name: (identifier) @class.name) @class.definition
		(assignment left: (identifier) @variable.name) @variable.definition
		(import_statement name: (dotted_name) @import.name) @import.definition
		(import_from_statement module_name: (dotted_name) @import.name) @import.definition
		(call function: (identifier) @reference.name)
		(call function: (attribute attribute: (identifier) @reference.name))
	`)
}

func setupRust() *Language {
	return newLanguage("rust", tree_sitter_rust.Language(), `
		(impl_item body: (declaration_list (function_item name: (identifier) @method.name) @method.definition))
		(trait_item body: (declaration_list (function_item name: (identifier) @method.name) @method.definition))
		(function_item name: (identifier) @function.name) @function.definition
		(struct_item name: (type_identifier) @struct.name) @struct.definition
		(enum_item name: (type_identifier) @enum.name) @enum.definition
		(trait_item name: (type_identifier) @interface.name) @interface.definition
		(type_item name: (type_identifier) @type_alias.name) @type_alias.definition
		(const_item name: (identifier) @constant.name) @constant.definition
		(mod_item name: (identifier) @module.name) @module.definition
		(use_declaration argument: (_) @import.name) @import.definition
		(call_expression function: (identifier) @reference.name)
		(call_expression function: (field_expression field: (field_identifier) @reference.name))
	`)
}

func setupJava() *Language {
	return newLanguage("java", tree_sitter_java.Language(), `
		(method_declaration name: (identifier) @method.name) @method.definition
		(constructor_declaration name: (identifier) @constructor.name) @constructor.definition
		(class_declaration name: (identifier) @class.name) @class.definition
		(interface_declaration name: (identifier) @interface.name) @interface.definition
		(enum_declaration name: (identifier) @enum.name) @enum.definition
		(field_declaration declarator: (variable_declarator name: (identifier) @field.name)) @field.definition
		(import_declaration (scoped_identifier) @import.name) @import.definition
		(method_invocation name: (identifier) @reference.name)
	`)
}

func setupCSharp() *Language {
	return newLanguage("csharp", tree_sitter_csharp.Language(), `
		(method_declaration name: (identifier) @method.name) @method.definition
		(class_declaration name: (identifier) @class.name) @class.definition
		(interface_declaration name: (identifier) @interface.name) @interface.definition
		(struct_declaration name: (identifier) @struct.name) @struct.definition
		(enum_declaration name: (identifier) @enum.name) @enum.definition
		(property_declaration name: (identifier) @property.name) @property.definition
		(using_directive (qualified_name) @import.name) @import.definition
		(invocation_expression function: (identifier) @reference.name)
	`)
}

func setupCpp() *Language {
	return newLanguage("cpp", tree_sitter_cpp.Language(), `
		(function_definition declarator: (function_declarator declarator: (identifier) @function.name)) @function.definition
		(class_specifier name: (type_identifier) @class.name) @class.definition
		(struct_specifier name: (type_identifier) @struct.name) @struct.definition
		(enum_specifier name: (type_identifier) @enum.name) @enum.definition
		(preproc_include path: (_) @import.name) @import.definition
		(call_expression function: (identifier) @reference.name)
	`)
}

func setupPHP() *Language {
	return newLanguage("php", tree_sitter_php.LanguagePHP(), `
		(function_definition name: (name) @function.name) @function.definition
		(method_declaration name: (name) @method.name) @method.definition
		(class_declaration name: (name) @class.name) @class.definition
		(interface_declaration name: (name) @interface.name) @interface.definition
		(namespace_use_clause (qualified_name) @import.name) @import.definition
		(function_call_expression function: (name) @reference.name)
	`)
}
