package i18n

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/jeandeaual/go-locale"
)

var (
	mu   sync.RWMutex
	lang string
)

var translations = map[string]map[string]string{
	"Welcome to your voice-controlled to-do list with a timer.": {
		"pt": "Bem-vindo à sua lista de tarefas por voz com temporizador.",
		"es": "Bienvenido a tu lista de tareas por voz con temporizador.",
		"ru": "Добро пожаловать в голосовой список дел с таймером.",
	},
	"Listening...": {
		"pt": "Ouvindo...",
		"es": "Escuchando...",
		"ru": "Слушаю...",
	},
	"Sorry, I couldn't understand.": {
		"pt": "Desculpe, não consegui entender.",
		"es": "Lo siento, no pude entender.",
		"ru": "Извините, я не понял.",
	},
	"Error connecting to speech service.": {
		"pt": "Erro ao conectar ao serviço de voz.",
		"es": "Error al conectar con el servicio de voz.",
		"ru": "Ошибка подключения к службе речи.",
	},
	"Task %s added.": {
		"pt": "Tarefa %s adicionada.",
		"es": "Tarea %s añadida.",
		"ru": "Задача %s добавлена.",
	},
	"Task %s deleted.": {
		"pt": "Tarefa %s removida.",
		"es": "Tarea %s eliminada.",
		"ru": "Задача %s удалена.",
	},
	"No task selected to delete.": {
		"pt": "Nenhuma tarefa selecionada para remover.",
		"es": "No hay ninguna tarea seleccionada para eliminar.",
		"ru": "Не выбрана задача для удаления.",
	},
	"All tasks deleted.": {
		"pt": "Todas as tarefas foram removidas.",
		"es": "Todas las tareas eliminadas.",
		"ru": "Все задачи удалены.",
	},
	"Closing the application": {
		"pt": "Fechando o aplicativo",
		"es": "Cerrando la aplicación",
		"ru": "Закрываю приложение",
	},
	"Timer set for %d seconds.": {
		"pt": "Temporizador definido para %d segundos.",
		"es": "Temporizador fijado en %d segundos.",
		"ru": "Таймер установлен на %d секунд.",
	},
	"Please enter a valid time.": {
		"pt": "Por favor, insira um tempo válido.",
		"es": "Por favor, introduce un tiempo válido.",
		"ru": "Пожалуйста, введите корректное время.",
	},
	"Invalid time input.": {
		"pt": "Tempo inválido.",
		"es": "Tiempo no válido.",
		"ru": "Неверное время.",
	},
	"Time is up!": {
		"pt": "O tempo acabou!",
		"es": "¡Se acabó el tiempo!",
		"ru": "Время вышло!",
	},
	"Timer Alert": {
		"pt": "Alerta do temporizador",
		"es": "Alerta del temporizador",
		"ru": "Сигнал таймера",
	},
	"Focus Mode activated!": {
		"pt": "Modo foco ativado!",
		"es": "¡Modo concentración activado!",
		"ru": "Режим фокуса включён!",
	},
	"Set your alarm!": {
		"pt": "Defina seu alarme!",
		"es": "¡Configura tu alarma!",
		"ru": "Установите будильник!",
	},
	"The To-Do List": {
		"pt": "Lista de Tarefas",
		"es": "Lista de Tareas",
		"ru": "Список дел",
	},
	"Add Task": {
		"pt": "Adicionar",
		"es": "Añadir",
		"ru": "Добавить",
	},
	"Delete Task": {
		"pt": "Remover",
		"es": "Eliminar",
		"ru": "Удалить",
	},
	"Delete All Tasks": {
		"pt": "Remover Todas",
		"es": "Eliminar Todas",
		"ru": "Удалить все",
	},
	"Exit": {
		"pt": "Sair",
		"es": "Salir",
		"ru": "Выход",
	},
	"Set Timer (in seconds):": {
		"pt": "Temporizador (em segundos):",
		"es": "Temporizador (en segundos):",
		"ru": "Таймер (в секундах):",
	},
	"Start Timer": {
		"pt": "Iniciar",
		"es": "Iniciar",
		"ru": "Старт",
	},
	"Close": {
		"pt": "Fechar",
		"es": "Cerrar",
		"ru": "Закрыть",
	},
	"mm:ss or seconds": {
		"pt": "mm:ss ou segundos",
		"es": "mm:ss o segundos",
		"ru": "мм:сс или секунды",
	},
	"Focus Mode": {
		"pt": "Modo Foco",
		"es": "Modo Concentración",
		"ru": "Режим фокуса",
	},
	"Timer": {
		"pt": "Temporizador",
		"es": "Temporizador",
		"ru": "Таймер",
	},
	"Alarm": {
		"pt": "Alarme",
		"es": "Alarma",
		"ru": "Будильник",
	},
	"Notepad": {
		"pt": "Bloco de Notas",
		"es": "Bloc de Notas",
		"ru": "Блокнот",
	},
	"Color Theme": {
		"pt": "Tema de Cores",
		"es": "Tema de Color",
		"ru": "Цветовая тема",
	},
	"Show": {
		"pt": "Mostrar",
		"es": "Mostrar",
		"ru": "Показать",
	},
	"Type a task, or leave empty to speak": {
		"pt": "Digite uma tarefa ou deixe vazio para falar",
		"es": "Escribe una tarea o déjalo vacío para hablar",
		"ru": "Введите задачу или оставьте пустым, чтобы сказать",
	},
	"Quit": {
		"pt": "Sair",
		"es": "Salir",
		"ru": "Выйти",
	},
}

// speechLocales maps a UI language to the recognizer language code.
var speechLocales = map[string]string{
	"en": "en-US",
	"pt": "pt-BR",
	"es": "es-ES",
	"ru": "ru-RU",
}

func init() {
	// Check for override environment variable
	if forcedLang := strings.TrimSpace(os.Getenv("VOICETASKS_LANG")); forcedLang != "" {
		log.Printf("VOICETASKS_LANG is set to: '%s'", forcedLang)
		SetLang(forcedLang)
		return
	}

	userLocales, err := locale.GetLocales()
	if err != nil || len(userLocales) == 0 {
		log.Println("Could not get user locale, defaulting to english")
		SetLang("en")
		return
	}
	log.Printf("Detected user locale: %s", userLocales[0])
	SetLang(userLocales[0])
}

// SetLang selects the phrase language from a language tag such as "pt" or
// "es_ES". Unsupported languages fall back to english.
func SetLang(tag string) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	selected := "en"
	for _, supported := range []string{"pt", "es", "ru"} {
		if strings.HasPrefix(tag, supported) {
			selected = supported
			break
		}
	}
	mu.Lock()
	lang = selected
	mu.Unlock()
}

// T returns the translation of key, or key itself.
func T(key string) string {
	mu.RLock()
	defer mu.RUnlock()
	if translated, ok := translations[key][lang]; ok {
		return translated
	}
	return key
}

// Tf translates a format key and applies args.
func Tf(key string, args ...any) string {
	return fmt.Sprintf(T(key), args...)
}

// GetLang returns the active language.
func GetLang() string {
	mu.RLock()
	defer mu.RUnlock()
	return lang
}

// SpeechLocale returns the BCP-47 code the recognizer should listen for.
func SpeechLocale() string {
	return speechLocales[GetLang()]
}
